package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"jukebox-service/internal/session"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		// Empty queries are a no-op, not an error.
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	if len(query) > 200 {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	results, err := s.session.Search(r.Context(), query)
	if err != nil {
		log.Printf("jukebox-service: search %q: %v", query, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": results})
}

func (s *Server) handleResetSearch(w http.ResponseWriter, r *http.Request) {
	s.session.ResetSearch()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDefaultPlaylist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.session.DefaultPlaylist()})
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var body session.Candidate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.VideoID = strings.TrimSpace(body.VideoID)
	if body.VideoID == "" {
		writeError(w, http.StatusBadRequest, "videoId is required")
		return
	}

	if err := s.session.Enqueue(r.Context(), body); err != nil {
		if !errors.Is(err, session.ErrInsufficientCredits) {
			// The queue/credit mutation may have committed; the caller gets
			// the failure and the current state for display.
			log.Printf("jukebox-service: enqueue %s: %v", body.VideoID, err)
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}
