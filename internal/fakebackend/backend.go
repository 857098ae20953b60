// Package fakebackend — in-memory реализация REST и WS эндпоинтов новостного чата.
// Нужна интеграционным тестам и команде dev-backend; ничего не хранит на диске.
package fakebackend

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/news-chat/pkg/logger"

	"github.com/gorilla/websocket"
)

type Options struct {
	// Secret — ключ HS256; пусто -> случайный на каждый запуск.
	Secret         []byte
	TokenTTL       time.Duration
	BcryptCost     int
	MaxMessageSize int64
	PingEvery      time.Duration
	AllowedOrigins []string
	Seed           bool
	Logger         *slog.Logger
	Now            func() time.Time
}

type Backend struct {
	opts     Options
	store    *Store
	tokens   *tokenIssuer
	hub      *hub
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func New(opts Options) *Backend {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(randomSecret())
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 30 * time.Minute
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 1 << 20
	}
	if opts.PingEvery <= 0 {
		opts.PingEvery = 15 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	log := opts.Logger
	if log == nil {
		log = logger.L()
	}

	store := NewStore(opts.Now)
	if opts.Seed {
		Seed(store)
	}

	return &Backend{
		opts:   opts,
		store:  store,
		tokens: &tokenIssuer{secret: opts.Secret, ttl: opts.TokenTTL, now: opts.Now},
		hub:    newHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With("component", "fakebackend"),
	}
}

func (b *Backend) Store() *Store { return b.store }

// Online — число живых WS-соединений: scope "global" или "room:{id}".
func (b *Backend) Online(scope string) int { return b.hub.Count(scope) }
