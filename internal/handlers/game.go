// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simondev/simonsays/internal/database"
)

type createGameRequest struct {
	Colors []string `json:"colors"`
}

func validateColors(colors []string) string {
	if len(colors) < 3 || len(colors) > 8 {
		return "colors must contain 3 to 8 entries"
	}
	for _, c := range colors {
		if strings.TrimSpace(c) == "" {
			return "colors must not contain empty entries"
		}
	}
	return ""
}

// gameSummary is the compact per-game view used by the list endpoints.
func gameSummary(d database.GameDetail) envelope {
	return envelope{
		"id":           d.Game.ID,
		"creator":      d.Creator,
		"colors":       d.Game.Colors,
		"status":       d.Game.Status,
		"winner":       d.Winner,
		"playersCount": len(d.Players),
		"createdAt":    d.Game.CreatedAt,
	}
}

func gameSummaries(details []database.GameDetail) []envelope {
	out := make([]envelope, 0, len(details))
	for _, d := range details {
		out = append(out, gameSummary(d))
	}
	return out
}

// handleListGames returns every waiting game.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	details, err := s.store.ListOpenGames(r.Context())
	if err != nil {
		s.domainError(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"message": "Available games",
		"games":   gameSummaries(details),
	})
}

// handleCreateGame opens a new game with the caller's color set.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if msg := validateColors(req.Colors); msg != "" {
		respondError(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	g, err := s.sessions.Create(r.Context(), user.ID, req.Colors)
	if err != nil {
		s.domainError(w, err)
		return
	}

	respond(w, http.StatusCreated, envelope{
		"message": "Game created successfully",
		"game": envelope{
			"id":        g.ID,
			"colors":    g.Colors,
			"status":    g.Status,
			"createdAt": g.CreatedAt,
		},
	})
}

// handleMyGames returns every game the caller holds a seat in.
func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	details, err := s.store.ListGamesByUser(r.Context(), user.ID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	respond(w, http.StatusOK, envelope{
		"message": "Your games",
		"games":   gameSummaries(details),
	})
}

// handleShowGame returns one game with its seats and identities.
func (s *Server) handleShowGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	d, err := s.store.GameDetail(r.Context(), gameID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	players := make([]envelope, 0, len(d.Players))
	for _, p := range d.Players {
		players = append(players, envelope{
			"user":         p.User,
			"playerNumber": p.PlayerNumber,
			"isTurn":       p.IsTurn,
			"joinedAt":     p.JoinedAt,
		})
	}

	respond(w, http.StatusOK, envelope{
		"game": envelope{
			"id":             d.Game.ID,
			"creator":        d.Creator,
			"colors":         d.Game.Colors,
			"status":         d.Game.Status,
			"winner":         d.Winner,
			"currentPlayer":  d.CurrentPlayer,
			"turnNumber":     d.Game.TurnNumber,
			"lastColorAdded": d.Game.LastColorAdded,
			"players":        players,
			"createdAt":      d.Game.CreatedAt,
			"updatedAt":      d.Game.UpdatedAt,
		},
	})
}

// handleJoinGame seats the caller as player 2 and starts the game.
func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	gameID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	g, err := s.sessions.Join(r.Context(), gameID, user.ID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.invalidateGame(r.Context(), gameID)

	respond(w, http.StatusOK, envelope{
		"message": "Joined game successfully",
		"game": envelope{
			"id":            g.ID,
			"status":        g.Status,
			"currentPlayer": g.CurrentPlayerID,
			"turnNumber":    g.TurnNumber,
		},
	})
}
