package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
)

// POST /api/auth/login
func (c *Client) Login(ctx context.Context, in LoginRequest) (LoginResponse, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: email and password are required", errs.ErrInvalidInput)
	}
	var out LoginResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"api", "auth", "login"},
		in:     in,
		out:    &out,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	if out.AccessToken == "" {
		return LoginResponse{}, fmt.Errorf("%w: empty access token", errs.ErrUpstream)
	}

	return out, nil
}

// POST /api/auth/signup
func (c *Client) Signup(ctx context.Context, in SignupRequest) (MessageResponse, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return MessageResponse{}, fmt.Errorf("%w: email, username and password are required", errs.ErrInvalidInput)
	}
	var out MessageResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"api", "auth", "signup"},
		in:     in,
		out:    &out,
	})

	return out, err
}

// GET /api/users/me
func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "users", "me"},
		token:  token,
		out:    &out,
	})

	return out, err
}

// GET /api/users/me/profile
func (c *Client) Profile(ctx context.Context, token string) (domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   []string{"api", "users", "me", "profile"},
		token:  token,
		out:    &out,
	})
	if out.Messages == nil {
		out.Messages = []domain.ProfileMessage{}
	}

	return out, err
}

// POST /api/users/me/change-password
func (c *Client) ChangePassword(ctx context.Context, token string, in ChangePasswordRequest) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"api", "users", "me", "change-password"},
		token:  token,
		in:     in,
		out:    &out,
	})

	return out, err
}
