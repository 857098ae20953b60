package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cwrk-planet/news-chat/internal/errs"
)

// APIError — non-2xx ответ бекенда. errors.Is работает по sentinel из errs.
type APIError struct {
	Status int
	Detail string
	kind   error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}

	return http.StatusText(e.Status)
}

func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		Status: status,
		Detail: parseDetail(body),
		kind:   errs.FromHTTP(status),
	}
}

// Бекенд отвечает {"detail": "..."}; на 422 detail приходит массивом.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}

	return string(env.Detail)
}
