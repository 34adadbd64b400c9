package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Get("/user/{id}", s.handleGetUser)
			r.Get("/users", s.handleListUsers)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/leaderboard", s.handleLeaderboard)

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Post("/save-score", s.handleSaveScore)
				r.Post("/save-mini-game", s.handleSaveMiniGame)
				r.Get("/user-scores/{userId}", s.handleUserScores)
				r.Post("/save-session", s.handleStartSession)
				r.Put("/session/{sessionId}", s.handleUpdateSession)
				r.Get("/active-sessions/{userId}", s.handleActiveSessions)
				r.Get("/user-stats/{userId}", s.handleUserStats)
				r.Get("/stats", s.handleGlobalStats)
				r.Post("/reconcile", s.handleReconcile)
			})
		})
	})

	return r
}
