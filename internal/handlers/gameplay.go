// internal/handlers/gameplay.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/simondev/simonsays/internal/database"
	"github.com/simondev/simonsays/internal/models"
)

type moveRequest struct {
	Sequence []string `json:"sequence"`
}

func validateSequence(seq []string) string {
	if len(seq) < 1 || len(seq) > 50 {
		return "sequence must contain 1 to 50 entries"
	}
	for _, c := range seq {
		if strings.TrimSpace(c) == "" {
			return "sequence must not contain empty entries"
		}
	}
	return ""
}

// stateSnapshot is the viewer-independent slice of game state kept in Redis
// behind the polled state endpoint. Per-viewer fields are derived from it on
// every request.
type stateSnapshot struct {
	Game          *models.Game        `json:"game"`
	Creator       *models.UserInfo    `json:"creator"`
	CurrentPlayer *models.UserInfo    `json:"currentPlayer"`
	Winner        *models.UserInfo    `json:"winner"`
	Players       []models.GamePlayer `json:"players"`
	LastMove      *models.GameMove    `json:"lastMove"`
}

func (s *Server) loadSnapshot(ctx context.Context, gameID uuid.UUID) (*stateSnapshot, error) {
	if s.cache != nil {
		var snap stateSnapshot
		hit, err := s.cache.GetSnapshot(ctx, gameID, &snap)
		if err != nil {
			s.log.WithError(err).Warn("snapshot read failed")
		} else if hit {
			return &snap, nil
		}
	}

	d, err := s.store.GameDetail(ctx, gameID)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LatestMove(ctx, gameID)
	if err != nil {
		return nil, err
	}

	snap := &stateSnapshot{
		Game:          d.Game,
		Creator:       d.Creator,
		CurrentPlayer: d.CurrentPlayer,
		Winner:        d.Winner,
		Players:       d.Players,
		LastMove:      last,
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, gameID, snap); err != nil {
			s.log.WithError(err).Warn("snapshot write failed")
		}
	}
	return snap, nil
}

func (s *Server) invalidateGame(ctx context.Context, gameID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateGame(ctx, gameID); err != nil {
		s.log.WithError(err).Warn("snapshot invalidation failed")
	}
}

// handleGameState serves the polled per-viewer view of a running game.
func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
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

	snap, err := s.loadSnapshot(r.Context(), gameID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	var seat *models.GamePlayer
	for i := range snap.Players {
		if snap.Players[i].UserID == user.ID {
			seat = &snap.Players[i]
		}
	}
	if seat == nil {
		respondError(w, http.StatusForbidden, "You are not in this game")
		return
	}

	isMyTurn := snap.Game.CurrentPlayerID != nil && *snap.Game.CurrentPlayerID == user.ID
	var opponentLastColor *string
	if snap.LastMove != nil && snap.LastMove.PlayerID != user.ID {
		opponentLastColor = &snap.LastMove.ColorAdded
	}

	body := envelope{
		"game": envelope{
			"id":             snap.Game.ID,
			"colors":         snap.Game.Colors,
			"status":         snap.Game.Status,
			"winner":         snap.Winner,
			"currentPlayer":  snap.CurrentPlayer,
			"turnNumber":     snap.Game.TurnNumber,
			"lastColorAdded": snap.Game.LastColorAdded,
			"updatedAt":      snap.Game.UpdatedAt,
		},
		"isMyTurn":          isMyTurn,
		"myPlayerNumber":    seat.PlayerNumber,
		"opponentLastColor": opponentLastColor,
	}
	if snap.LastMove != nil {
		body["lastMove"] = envelope{
			"id":         snap.LastMove.ID,
			"playerId":   snap.LastMove.PlayerID,
			"turnNumber": snap.LastMove.TurnNumber,
			"colorAdded": snap.LastMove.ColorAdded,
			"isCorrect":  snap.LastMove.IsCorrect,
			"moveTime":   snap.LastMove.MoveTime,
		}
	}
	respond(w, http.StatusOK, body)
}

// handleGameMoves returns the full move history, participants only.
func (s *Server) handleGameMoves(w http.ResponseWriter, r *http.Request) {
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

	d, err := s.store.GameDetail(r.Context(), gameID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	if !isParticipant(d, user.ID) {
		respondError(w, http.StatusForbidden, "You are not in this game")
		return
	}

	moves, err := s.store.MovesByGame(r.Context(), gameID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	out := make([]envelope, 0, len(moves))
	for _, m := range moves {
		out = append(out, envelope{
			"id":         m.ID,
			"player":     m.Player,
			"turnNumber": m.TurnNumber,
			"sequence":   m.Sequence,
			"colorAdded": m.ColorAdded,
			"isCorrect":  m.IsCorrect,
			"moveTime":   m.MoveTime,
		})
	}
	respond(w, http.StatusOK, envelope{
		"message": "Game moves",
		"moves":   out,
	})
}

// handleMakeMove submits the caller's sequence for the current turn.
func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
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

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if msg := validateSequence(req.Sequence); msg != "" {
		respondError(w, http.StatusBadRequest, "Validation error", msg)
		return
	}

	out, err := s.sessions.SubmitMove(r.Context(), gameID, user.ID, req.Sequence)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.invalidateGame(r.Context(), gameID)

	lastMove := envelope{
		"id":         out.Move.ID,
		"turnNumber": out.Move.TurnNumber,
		"sequence":   out.Move.Sequence,
		"colorAdded": out.Move.ColorAdded,
		"isCorrect":  out.Move.IsCorrect,
	}

	if out.Move.IsCorrect {
		respond(w, http.StatusOK, envelope{
			"message": "Move accepted",
			"game": envelope{
				"id":             out.Game.ID,
				"status":         out.Game.Status,
				"currentPlayer":  out.Game.CurrentPlayerID,
				"turnNumber":     out.Game.TurnNumber,
				"lastColorAdded": out.Game.LastColorAdded,
				"lastMove":       lastMove,
			},
		})
		return
	}

	respond(w, http.StatusOK, envelope{
		"message": "Wrong sequence, you lost the game",
		"game": envelope{
			"id":        out.Game.ID,
			"status":    out.Game.Status,
			"winner":    out.Game.WinnerID,
			"lastMove":  lastMove,
			"isCorrect": false,
		},
	})
}

// handleForfeit concedes the game to the opponent.
func (s *Server) handleForfeit(w http.ResponseWriter, r *http.Request) {
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

	g, err := s.sessions.Forfeit(r.Context(), gameID, user.ID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.invalidateGame(r.Context(), gameID)

	respond(w, http.StatusOK, envelope{
		"message": "Game forfeited",
		"game": envelope{
			"id":     g.ID,
			"status": g.Status,
			"winner": g.WinnerID,
		},
	})
}

func isParticipant(d *database.GameDetail, userID uuid.UUID) bool {
	for _, p := range d.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
