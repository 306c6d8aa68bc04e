// internal/handlers/auth_middleware.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/simondev/simonsays/internal/auth"
	"github.com/simondev/simonsays/internal/models"
)

type ctxUserKey struct{}

const authCookieName = "auth_token"

// extractToken pulls a bearer token from the Authorization header, falling
// back to the auth cookie.
func extractToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(authCookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireAuth verifies the caller's token, rejects revoked tokens when Redis
// is available, confirms the user still exists, and stores the identity in
// the request context. Handlers pass the resolved user ID explicitly into
// every domain operation.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "Missing credentials")
			return
		}

		if s.cache != nil {
			revoked, err := s.cache.IsTokenRevoked(r.Context(), token)
			if err != nil {
				s.log.WithError(err).Warn("token revocation check failed")
			} else if revoked {
				respondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
		}

		userIDStr, err := auth.AuthenticateJWT(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		user, err := s.store.GetUserByID(r.Context(), userID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user placed in context by requireAuth.
func currentUser(r *http.Request) (*models.User, error) {
	u, _ := r.Context().Value(ctxUserKey{}).(*models.User)
	if u == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return u, nil
}
