package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"jukebox-service/internal/auth"
	"jukebox-service/internal/channel"
	"jukebox-service/internal/session"
	"jukebox-service/internal/users"
	"jukebox-service/internal/window"
)

type Server struct {
	session  *session.Session
	store    *users.Store
	hub      *window.Hub
	source   channel.Source
	verifier *auth.Verifier
}

func NewServer(sess *session.Session, store *users.Store, hub *window.Hub, source channel.Source, verifier *auth.Verifier) *Server {
	return &Server{
		session:  sess,
		store:    store,
		hub:      hub,
		source:   source,
		verifier: verifier,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	// Player window surface; the window itself carries no user token.
	r.Get("/ws/player", s.hub.HandleWS)
	r.Get("/player/command", s.handlePlayerCommand)

	r.Group(func(r chi.Router) {
		r.Use(s.verifier.Authenticate)

		// Jukebox selection surface.
		r.Get("/search", s.handleSearch)
		r.Delete("/search", s.handleResetSearch)
		r.Get("/playlist/default", s.handleDefaultPlaylist)
		r.Post("/queue", s.handleEnqueue)
		r.Get("/state", s.handleState)

		// Admin console surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)

			r.Post("/credits", s.handleAdjustCredit)
			r.Post("/mode", s.handleSetMode)
			r.Post("/player/toggle", s.handleTogglePlayer)
			r.Post("/player/skip", s.handleSkipSong)
			r.Get("/logs", s.handleLogs)

			r.Get("/backgrounds", s.handleListBackgrounds)
			r.Post("/backgrounds", s.handleAddBackground)
			r.Post("/backgrounds/select", s.handleSelectBackground)
			r.Post("/backgrounds/cycle", s.handleCycleBackgrounds)

			r.Get("/admin/users", s.handleListUsers)
			r.Post("/admin/users", s.handleAddUser)
			r.Patch("/admin/users/{id}", s.handleUpdateUser)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "jukebox-service",
	})
}
