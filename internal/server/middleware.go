package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/devbharu/EduSphere-sub001/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom returns the authenticated identity stored by requireAuth.
func identityFrom(r *http.Request) *auth.Identity {
	id, _ := r.Context().Value(identityKey).(*auth.Identity)
	return id
}

// requireAuth wraps a handler with bearer-token verification. The REST
// surface shares the authenticator with the event channel.
func requireAuth(authenticator *auth.Authenticator) func(http.HandlerFunc) http.Handler {
	return func(next http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticator.Verify(bearerToken(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next(w, r.WithContext(ctx))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
