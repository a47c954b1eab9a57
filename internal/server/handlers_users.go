package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"jukebox-service/internal/auth"
	"jukebox-service/internal/users"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("jukebox-service: list users: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load approved users")
		return
	}
	if list == nil {
		list = []users.ApprovedUser{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list})
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email  string `json:"email"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Email == "" || !strings.Contains(body.Email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if body.Status == "" {
		body.Status = users.StatusPending
	}
	if !validStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	}

	approver := ""
	if u, ok := auth.UserFromContext(r); ok {
		approver = u.Email
	}

	created, err := s.store.Insert(r.Context(), body.Email, body.Status, approver)
	if err != nil {
		log.Printf("jukebox-service: add user: %v", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "status must be pending, approved or rejected")
		return
	}

	approver := ""
	if u, ok := auth.UserFromContext(r); ok {
		approver = u.Email
	}

	updated, err := s.store.UpdateStatus(r.Context(), id, body.Status, approver)
	if err != nil {
		log.Printf("jukebox-service: update user %s: %v", id, err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func validStatus(status string) bool {
	switch status {
	case users.StatusPending, users.StatusApproved, users.StatusRejected:
		return true
	}
	return false
}
