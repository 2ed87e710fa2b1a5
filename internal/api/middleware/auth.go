package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"starry-api/internal/apperr"
	"starry-api/internal/auth"
	"starry-api/internal/repository/db"
)

// AuthenticatedHandler receives the resolved user as an explicit
// parameter instead of hiding it in the request context.
type AuthenticatedHandler func(w http.ResponseWriter, r *http.Request, user *db.User)

// Auth validates bearer tokens and threads the resolved user into
// protected handlers.
type Auth struct {
	authService *auth.Service
}

// NewAuth creates a new Auth middleware
func NewAuth(authService *auth.Service) *Auth {
	return &Auth{authService: authService}
}

// Require wraps a protected handler with bearer-token verification
func (a *Auth) Require(next AuthenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			writeAuthError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		user, err := a.authService.VerifyToken(bearerToken[1])
		if err != nil {
			writeAuthError(w, apperr.StatusOf(err), apperr.MessageOf(err))
			return
		}

		next(w, r, user)
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
