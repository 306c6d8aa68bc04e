// internal/handlers/api_server.go
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/simondev/simonsays/internal/cache"
	"github.com/simondev/simonsays/internal/database"
	"github.com/simondev/simonsays/internal/middleware"
	"github.com/simondev/simonsays/internal/service"
)

// Server bundles the router with the store, session service, and optional
// Redis client. All game state is pulled by clients over plain HTTP.
type Server struct {
	r        *chi.Mux
	store    *database.Store
	sessions *service.Sessions
	cache    *cache.Client
	log      *logrus.Logger
}

// New constructs the server, installs middleware, and registers all routes.
// cacheClient may be nil; the server then serves every read from Postgres
// and logout only clears the cookie.
func New(store *database.Store, sessions *service.Sessions, cacheClient *cache.Client, log *logrus.Logger) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		store:    store,
		sessions: sessions,
		cache:    cacheClient,
		log:      log,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(middleware.LogMiddleware(log))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, envelope{
			"message": "Simon Says API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"auth":     "/api/auth",
				"games":    "/api/games",
				"gameplay": "/api/gameplay",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, envelope{"status": "ok"})
	})

	s.r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
		})
	})

	s.r.Route("/api/games", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleListGames)
		r.Post("/", s.handleCreateGame)
		r.Get("/my-games", s.handleMyGames)
		r.Get("/{id}", s.handleShowGame)
		r.Post("/{id}/join", s.handleJoinGame)
	})

	s.r.Route("/api/gameplay", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/{id}/state", s.handleGameState)
		r.Get("/{id}/moves", s.handleGameMoves)
		r.Post("/{id}/move", s.handleMakeMove)
		r.Post("/{id}/forfeit", s.handleForfeit)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusNotFound, envelope{"message": "Not found"})
	})

	return s
}

// Router exposes the chi mux, mainly for tests.
func (s *Server) Router() chi.Router { return s.r }

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.r)
}
