// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/simondev/simonsays/internal/game"
)

// envelope is the {message, ...} JSON body every endpoint returns.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string, detail ...string) {
	body := envelope{"message": message}
	if len(detail) > 0 {
		body["error"] = detail[0]
	}
	respond(w, status, body)
}

// domainError maps domain failures to HTTP statuses per the error taxonomy:
// state conflicts are 400 (403 for non-participants), missing games 404,
// integrity problems 500. State never mutates on any of these.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		respondError(w, http.StatusNotFound, "Game not found")
	case errors.Is(err, game.ErrGameNotOpen):
		respondError(w, http.StatusBadRequest, "This game is no longer available")
	case errors.Is(err, game.ErrGameNotPlaying):
		respondError(w, http.StatusBadRequest, "This game is not in progress")
	case errors.Is(err, game.ErrNotYourTurn):
		respondError(w, http.StatusBadRequest, "Not your turn")
	case errors.Is(err, game.ErrNotParticipant):
		respondError(w, http.StatusForbidden, "You are not in this game")
	case errors.Is(err, game.ErrGameFull):
		respondError(w, http.StatusBadRequest, "This game is full")
	case errors.Is(err, game.ErrOwnGame):
		respondError(w, http.StatusBadRequest, "You cannot join your own game")
	case errors.Is(err, game.ErrAlreadyJoined):
		respondError(w, http.StatusBadRequest, "You are already in this game")
	case errors.Is(err, game.ErrTurnConflict):
		respondError(w, http.StatusBadRequest, "A move for this turn was already made")
	default:
		var integrity *game.IntegrityError
		if errors.As(err, &integrity) {
			s.log.WithError(err).Error("persisted game data failed integrity check")
			respondError(w, http.StatusInternalServerError, "Internal error")
			return
		}
		s.log.WithError(err).Error("unexpected error")
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}
