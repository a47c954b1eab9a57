package server

import (
	"log"
	"net/http"
)

// handlePlayerCommand is polled by the player window as a fallback when its
// socket is down. The slot holds at most one command and reading consumes it.
func (s *Server) handlePlayerCommand(w http.ResponseWriter, r *http.Request) {
	cmd, ok, err := s.source.TryReceive(r.Context())
	if err != nil {
		log.Printf("jukebox-service: receive command: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read command slot")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cmd)
}
