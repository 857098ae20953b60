package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: logger.Discard()})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://x", "://bad"} {
		_, err := New(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestLogin(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
			return
		}
		if in.Email != "alice@example.com" || in.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{AccessToken: "tok", TokenType: "bearer"})
	})
	c := newTestClient(t, r)

	out, err := c.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)

	_, err = c.Login(context.Background(), LoginRequest{Email: "alice@example.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnauthorized))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
}

func TestLogin_ValidatesLocally(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.Login(context.Background(), LoginRequest{Email: " ", Password: "x"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestSignup_Conflict(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
	})
	c := newTestClient(t, r)

	_, err := c.Signup(context.Background(), SignupRequest{Email: "a@b.c", Username: "a", Password: "p"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Contains(t, err.Error(), "already registered")
}

func TestMe_SendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	r := chi.NewRouter()
	r.Get("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, domain.User{Email: "alice@example.com", Username: "alice"})
	})
	c := newTestClient(t, r)

	ctx := WithRequestID(context.Background(), "req-1")
	u, err := c.Me(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "req-1", gotReqID)
}

func TestMe_GeneratesRequestID(t *testing.T) {
	var gotReqID string
	r := chi.NewRouter()
	r.Get("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, domain.User{Username: "alice"})
	})
	c := newTestClient(t, r)

	_, err := c.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotEmpty(t, gotReqID)
}

func TestProfile_DecodesUserInfo(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/users/me/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user_info":{"email":"a@b.c","username":"alice"},"messages":[
			{"message":"hi","room_id":42,"topic_keyword":"election","created_at":"2024-05-01T10:00:00Z"}]}`))
	})
	c := newTestClient(t, r)

	p, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User.Username)
	require.Len(t, p.Messages, 1)
	assert.Equal(t, int64(42), p.Messages[0].RoomID)
	assert.Equal(t, "election", p.Messages[0].TopicKeyword)
}

func TestArticlesByCategory_EscapesSegment(t *testing.T) {
	var gotRaw string
	srv := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, []domain.Article{{ID: 1, Title: "t"}})
	})
	c := newTestClient(t, srv)

	list, err := c.ArticlesByCategory(context.Background(), "science/tech")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "/api/articles/category/science%2Ftech", gotRaw)
}

func TestSearchArticles(t *testing.T) {
	var gotQ string
	r := chi.NewRouter()
	r.Get("/api/articles/search", func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`null`))
	})
	c := newTestClient(t, r)

	list, err := c.SearchArticles(context.Background(), "  climate change ")
	require.NoError(t, err)
	assert.Equal(t, "climate change", gotQ)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	gotQ = "untouched"
	list, err = c.SearchArticles(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "untouched", gotQ)
}

func TestIncrementView(t *testing.T) {
	hits := 0
	r := chi.NewRouter()
	r.Post("/api/articles/{id}/view", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "7" {
			hits++
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Article not found"})
	})
	c := newTestClient(t, r)

	require.NoError(t, c.IncrementView(context.Background(), 7))
	assert.Equal(t, 1, hits)
	assert.ErrorIs(t, c.IncrementView(context.Background(), 8), errs.ErrNotFound)
	assert.ErrorIs(t, c.IncrementView(context.Background(), 0), errs.ErrInvalidInput)
}

func TestRooms_LimitQuery(t *testing.T) {
	var gotLimit string
	r := chi.NewRouter()
	r.Get("/api/chat/rooms", func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(w, http.StatusOK, []domain.RoomSummary{{ID: 42, TopicKeyword: "election", TotalViews: 10}})
	})
	c := newTestClient(t, r)

	rooms, err := c.Rooms(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "5", gotLimit)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(10), rooms[0].TotalViews)

	_, err = c.Rooms(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "", gotLimit)
}

func TestRoom_DetailsAndHistory(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/chat/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "42" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Room not found"})
			return
		}
		_, _ = w.Write([]byte(`{"details":{"id":42,"topic_keyword":"election","created_at":"2024-05-01T10:00:00Z"},
			"messages":[{"username":"bob","message":"hello"}]}`))
	})
	c := newTestClient(t, r)

	room, err := c.Room(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), room.Details.ID)
	require.Len(t, room.Messages, 1)
	assert.Equal(t, "bob", room.Messages[0].Username)
	assert.NotNil(t, room.RelatedArticles)

	_, err = c.Room(context.Background(), "43")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDo_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second, Logger: logger.Discard()})
	require.NoError(t, err)

	_, err = c.Rooms(context.Background(), 5)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestDo_BadJSONIsUpstream(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))

	_, err := c.Articles(context.Background())
	assert.ErrorIs(t, err, errs.ErrUpstream)
}

func TestParseDetail(t *testing.T) {
	cases := map[string]string{
		`{"detail":"Room not found"}`:           "Room not found",
		`{"detail":[{"msg":"field required"}]}`: `[{"msg":"field required"}]`,
		`plain text`:                            "plain text",
		``:                                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseDetail([]byte(in)), in)
	}
}
