package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromHTTP(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusOK, nil},
		{http.StatusCreated, nil},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusUnprocessableEntity, ErrInvalidInput},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusInternalServerError, ErrUpstream},
		{http.StatusTeapot, ErrUpstream},
	}
	for _, tc := range cases {
		if got := FromHTTP(tc.status); got != tc.want {
			t.Fatalf("FromHTTP(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestToHTTP_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: email taken", ErrConflict)
	if got := ToHTTP(err); got != http.StatusConflict {
		t.Fatalf("ToHTTP = %d, want 409", got)
	}
	if got := ToHTTP(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("ToHTTP = %d, want 500", got)
	}
	if got := ToHTTP(nil); got != http.StatusOK {
		t.Fatalf("ToHTTP(nil) = %d, want 200", got)
	}
}
