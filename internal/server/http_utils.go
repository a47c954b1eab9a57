package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"jukebox-service/internal/channel"
	"jukebox-service/internal/search"
	"jukebox-service/internal/session"
	"jukebox-service/internal/users"
	"jukebox-service/internal/window"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps domain failures onto transient, user-visible
// notifications. Nothing here terminates the controller.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, "insufficient credits")
	case errors.Is(err, window.ErrPopupBlocked):
		writeError(w, http.StatusConflict, "player window did not open; allow popups and retry")
	case errors.Is(err, channel.ErrWindowUnavailable):
		writeError(w, http.StatusBadGateway, "player window is not available")
	case errors.Is(err, channel.ErrWriteDenied):
		writeError(w, http.StatusBadGateway, "failed to deliver command to player")
	case errors.Is(err, search.ErrSearch):
		writeError(w, http.StatusBadGateway, "failed to search for videos, please try again")
	case errors.Is(err, users.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email is already approved")
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, "approved user not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
