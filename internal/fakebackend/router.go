package fakebackend

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   b.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// REST; логгер и таймаут оборачивают ResponseWriter, поэтому ws вне этой группы
	r.Route("/api", func(r chi.Router) {
		r.Use(requestLogger(b.log))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", b.signup)
			r.Post("/login", b.login)
		})
		r.Route("/users/me", func(r chi.Router) {
			r.Use(b.requireUser)
			r.Get("/", b.me)
			r.Get("/profile", b.profile)
			r.Post("/change-password", b.changePassword)
		})
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", b.articles)
			r.Get("/category/{category}", b.articlesByCategory)
			r.Get("/search", b.searchArticles)
			r.Post("/{id}/view", b.incrementView)
		})
		r.Route("/chat/rooms", func(r chi.Router) {
			r.Get("/", b.rooms)
			r.Get("/{roomID}", b.room)
		})
	})

	r.Get("/ws/{username}", b.handleGlobalWS)
	r.Get("/ws/chat/{roomID}/{username}", b.handleRoomWS)

	return r
}
