package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cwrk-planet/news-chat/internal/domain"
	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/internal/rest"
	"github.com/cwrk-planet/news-chat/pkg/logger"
)

// Backend — то, что auth берёт у REST-клиента.
type Backend interface {
	Login(ctx context.Context, in rest.LoginRequest) (rest.LoginResponse, error)
	Me(ctx context.Context, token string) (domain.User, error)
}

// Listener получает нового пользователя после Login/Init, nil после Logout.
type Listener func(u *domain.User)

// Context — контекст аутентификации процесса. Жизненный цикл явный: Init, Login, Logout.
type Context struct {
	backend Backend
	store   Store
	log     *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	token     string
	user      *domain.User
	listeners map[int]Listener
	nextID    int
}

func NewContext(backend Backend, store Store, log *slog.Logger) *Context {
	if log == nil {
		log = logger.L()
	}

	return &Context{
		backend:   backend,
		store:     store,
		log:       log.With("component", "auth"),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// Init читает сохранённый токен и проверяет его через /api/users/me.
// Протухший или отвергнутый токен стирается. Сетевую ошибку возвращаем, токен оставляем.
func (c *Context) Init(ctx context.Context) error {
	tok, ok, err := c.store.Load()
	if err != nil {
		c.log.WarnContext(ctx, "auth.Init load failed", logger.Args(ctx, "err", err)...)
		_ = c.clear(ctx)
		return nil
	}
	if !ok {
		return nil
	}

	if claims, err := InspectToken(tok.AccessToken); err == nil && claims.Expired(c.now()) {
		c.log.InfoContext(ctx, "auth token expired", logger.Args(ctx, "exp", claims.ExpiresAt)...)
		_ = c.clear(ctx)
		return nil
	}

	u, err := c.backend.Me(ctx, tok.AccessToken)
	switch {
	case errors.Is(err, errs.ErrUnauthorized), errors.Is(err, errs.ErrForbidden):
		c.log.InfoContext(ctx, "auth token rejected", logger.Args(ctx, "err", err)...)
		_ = c.clear(ctx)
		return nil
	case err != nil:
		c.mu.Lock()
		c.token = tok.AccessToken
		c.mu.Unlock()
		return fmt.Errorf("auth: validate token: %w", err)
	}

	c.set(tok.AccessToken, &u)
	return nil
}

// Login получает токен, проверяет его через Me и сохраняет.
func (c *Context) Login(ctx context.Context, email, password string) (domain.User, error) {
	resp, err := c.backend.Login(ctx, rest.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return domain.User{}, err
	}
	u, err := c.backend.Me(ctx, resp.AccessToken)
	if err != nil {
		return domain.User{}, fmt.Errorf("auth: fetch user: %w", err)
	}

	if err := c.store.Save(Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		SavedAt:     c.now().UTC(),
	}); err != nil {
		c.log.WarnContext(ctx, "auth.Login save failed", logger.Args(ctx, "err", err)...)
		return domain.User{}, err
	}

	c.set(resp.AccessToken, &u)
	c.log.InfoContext(ctx, "auth login", logger.Args(ctx, "user", u.Username)...)
	return u, nil
}

// Logout стирает токен и оповещает подписчиков.
func (c *Context) Logout(ctx context.Context) error {
	return c.clear(ctx)
}

func (c *Context) User() (domain.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.user == nil {
		return domain.User{}, false
	}
	return *c.user, true
}

// Identity отдаёт username текущего пользователя.
func (c *Context) Identity() (string, bool) {
	u, ok := c.User()
	if !ok || u.Username == "" {
		return "", false
	}

	return u.Username, true
}

func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token
}

// Subscribe возвращает функцию отписки.
func (c *Context) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Context) set(token string, u *domain.User) {
	c.mu.Lock()
	c.token = token
	c.user = u
	ls := c.snapshotListeners()
	c.mu.Unlock()

	for _, fn := range ls {
		cp := *u
		fn(&cp)
	}
}

func (c *Context) clear(ctx context.Context) error {
	err := c.store.Clear()
	if err != nil {
		c.log.WarnContext(ctx, "auth.clear failed", logger.Args(ctx, "err", err)...)
	}

	c.mu.Lock()
	c.token = ""
	c.user = nil
	ls := c.snapshotListeners()
	c.mu.Unlock()

	for _, fn := range ls {
		fn(nil)
	}

	return err
}

func (c *Context) snapshotListeners() []Listener {
	ls := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		ls = append(ls, fn)
	}

	return ls
}
