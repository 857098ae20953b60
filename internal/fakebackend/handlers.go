package fakebackend

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/rest"

	"github.com/go-chi/chi/v5"
)

// chi матчит по RawPath, параметры приходят экранированными.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (b *Backend) signup(w http.ResponseWriter, r *http.Request) {
	var in rest.SignupRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email, username and password are required")
		return
	}
	if in.Username == domain.SystemSender {
		writeDetail(w, http.StatusBadRequest, "username is reserved")
		return
	}
	hash, err := hashPassword(in.Password, b.opts.BcryptCost)
	if err != nil {
		writeErr(w, err, "")
		return
	}
	if err := b.store.CreateUser(in.Email, in.Username, hash); err != nil {
		writeErr(w, err, "email is already registered")
		return
	}

	writeJSON(w, http.StatusCreated, rest.MessageResponse{Message: fmt.Sprintf("%s, signup complete", in.Username)})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in rest.LoginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON")
		return
	}
	u, err := b.store.userByEmail(strings.TrimSpace(in.Email))
	if err != nil || comparePassword(u.hash, in.Password) != nil {
		writeDetail(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	token, err := b.tokens.Issue(u.Email)
	if err != nil {
		b.log.Error("fakebackend.login issue token failed", "err", err)
		writeDetail(w, http.StatusInternalServerError, "token issue failed")
		return
	}

	writeJSON(w, http.StatusOK, rest.LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFrom(r.Context()))
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	writeJSON(w, http.StatusOK, domain.Profile{User: u, Messages: b.store.ProfileMessages(u.Username)})
}

func (b *Backend) changePassword(w http.ResponseWriter, r *http.Request) {
	var in rest.ChangePasswordRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON")
		return
	}
	u := userFrom(r.Context())
	row, err := b.store.userByEmail(u.Email)
	if err != nil {
		writeErr(w, err, "user not found")
		return
	}
	if comparePassword(row.hash, in.CurrentPassword) != nil {
		writeDetail(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	hash, err := hashPassword(in.NewPassword, b.opts.BcryptCost)
	if err != nil {
		writeErr(w, err, "")
		return
	}
	if err := b.store.setPasswordHash(u.Email, hash); err != nil {
		writeErr(w, err, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, rest.MessageResponse{Message: "password changed"})
}

func (b *Backend) articles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.store.Feed())
}

func (b *Backend) articlesByCategory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.store.ArticlesByCategory(pathParam(r, "category")))
}

func (b *Backend) searchArticles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.store.SearchArticles(r.URL.Query().Get("q")))
}

func (b *Backend) incrementView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid article id")
		return
	}
	if err := b.store.IncrementView(id); err != nil {
		writeErr(w, err, "article not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) rooms(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid limit")
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, b.store.Rooms(limit))
}

func (b *Backend) room(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(pathParam(r, "roomID"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "room not found")
		return
	}
	room, err := b.store.Room(id)
	if err != nil {
		writeErr(w, err, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, room)
}
