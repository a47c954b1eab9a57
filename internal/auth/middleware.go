package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ctxUserKey struct{}

// Authenticate extracts the bearer token and attaches the caller to the
// request context. Requests without a valid token are rejected.
func (v *Verifier) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := v.ParseToken(strings.TrimSpace(token))
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates the admin surface: a non-qualifying role is routed
// away entirely, never given partial access.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "missing user context")
			return
		}
		if !user.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserFromContext(r *http.Request) (User, bool) {
	v := r.Context().Value(ctxUserKey{})
	if v == nil {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

// ContextWithUser is a test seam for handlers below the middleware.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
