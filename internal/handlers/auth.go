// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/simondev/simonsays/internal/auth"
	"github.com/simondev/simonsays/internal/database"
	"github.com/simondev/simonsays/internal/models"
)

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateRegister(req registerRequest) string {
	if len(req.FullName) < 2 || len(req.FullName) > 50 {
		return "fullName must be 2 to 50 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "email is not valid"
	}
	if len(req.Password) < 6 || len(req.Password) > 32 {
		return "password must be 6 to 32 characters"
	}
	return ""
}

// handleRegister creates a user and returns a signed token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if msg := validateRegister(req); msg != "" {
		respondError(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	user := models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := s.store.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			respondError(w, http.StatusBadRequest, "Could not register user", "email already registered")
			return
		}
		s.log.WithError(err).Error("create user")
		respondError(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	s.issueToken(w, http.StatusCreated, "User registered successfully", &user)
}

// handleLogin verifies credentials and returns a signed token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	user, err := s.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.log.WithError(err).Error("authenticate user")
		respondError(w, http.StatusInternalServerError, "Could not log in")
		return
	}

	s.issueToken(w, http.StatusOK, "Login successful", user)
}

func (s *Server) issueToken(w http.ResponseWriter, status int, message string, user *models.User) {
	token, err := auth.CreateJWT(user.ID.String())
	if err != nil {
		s.log.WithError(err).Error("sign jwt")
		respondError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}

	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	}
	if ttl := auth.TokenTTL(); ttl > 0 {
		cookie.MaxAge = int(ttl / time.Second)
	}
	http.SetCookie(w, cookie)

	respond(w, status, envelope{
		"message": message,
		"user":    user.Info(),
		"token":   token,
	})
}

// handleLogout denylists the presented token when Redis is configured and
// clears the auth cookie either way.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if token := extractToken(r); token != "" {
			if err := s.cache.RevokeToken(r.Context(), token, auth.TokenTTL()); err != nil {
				s.log.WithError(err).Warn("revoke token")
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
	})
	respond(w, http.StatusOK, envelope{"message": "Logged out successfully"})
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respond(w, http.StatusOK, envelope{
		"user": envelope{
			"id":        user.ID,
			"email":     user.Email,
			"fullName":  user.FullName,
			"createdAt": user.CreatedAt,
		},
	})
}
