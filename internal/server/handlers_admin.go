package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"jukebox-service/internal/session"
)

func (s *Server) handleAdjustCredit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	credits := s.session.AdjustCredit(body.Delta)
	writeJSON(w, http.StatusOK, map[string]any{"credits": credits})
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode session.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Mode != session.ModeFreeplay && body.Mode != session.ModePaid {
		writeError(w, http.StatusBadRequest, "mode must be FREEPLAY or PAID")
		return
	}

	s.session.SetMode(body.Mode)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleTogglePlayer(w http.ResponseWriter, r *http.Request) {
	running, err := s.session.TogglePlayer(r.Context())
	if err != nil {
		log.Printf("jukebox-service: toggle player: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": running})
}

func (s *Server) handleSkipSong(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SkipSong(r.Context()); err != nil {
		log.Printf("jukebox-service: skip song: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"logs": s.session.Logs()})
}

func (s *Server) handleListBackgrounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"backgrounds": s.session.Backgrounds(),
		"selected":    s.session.CurrentBackground().ID,
	})
}

func (s *Server) handleAddBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string                 `json:"name"`
		URL  string                 `json:"url"`
		Kind session.BackgroundKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	body.URL = strings.TrimSpace(body.URL)
	if body.Name == "" || body.URL == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	if body.Kind != session.BackgroundImage && body.Kind != session.BackgroundVideo {
		writeError(w, http.StatusBadRequest, "kind must be image or video")
		return
	}

	bg := s.session.AddBackground(body.Name, body.URL, body.Kind)
	writeJSON(w, http.StatusCreated, bg)
}

func (s *Server) handleSelectBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.session.SelectBackground(body.ID); err != nil {
		writeError(w, http.StatusNotFound, "unknown background")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selected": body.ID})
}

func (s *Server) handleCycleBackgrounds(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.session.SetCycleBackgrounds(body.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{"cycleBackgrounds": body.Enabled})
}
