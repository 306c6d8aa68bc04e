// internal/service/session.go
//
// Game session orchestration. Every mutation (create, join, move, forfeit)
// runs as one transaction over a locked game row: the read that decides the
// outcome and the writes that apply it commit together or not at all.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simondev/simonsays/internal/game"
	"github.com/simondev/simonsays/internal/models"
)

// Queries is the set of storage operations a session transaction needs.
// Implemented by the database package over a pgx transaction; tests supply
// an in-memory fake.
type Queries interface {
	// GameForUpdate loads a game and locks its row for the duration of the
	// transaction. Returns game.ErrGameNotFound if absent.
	GameForUpdate(ctx context.Context, gameID uuid.UUID) (*models.Game, error)
	PlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error)
	// LatestMove returns the move with the highest turn number, or nil if the
	// game has no moves yet. A stored sequence that fails strict decoding
	// surfaces as *game.IntegrityError.
	LatestMove(ctx context.Context, gameID uuid.UUID) (*models.GameMove, error)
	InsertGame(ctx context.Context, g *models.Game) error
	InsertPlayer(ctx context.Context, p *models.GamePlayer) error
	// InsertMove returns game.ErrTurnConflict when a move for the same turn
	// was already committed by a concurrent request.
	InsertMove(ctx context.Context, m *models.GameMove) error
	UpdateGame(ctx context.Context, g *models.Game) error
	// SetTurnFlags makes is_turn true for exactly the given player, or for
	// nobody when current is nil.
	SetTurnFlags(ctx context.Context, gameID uuid.UUID, current *uuid.UUID) error
}

// Store runs a function atomically against storage.
type Store interface {
	Atomic(ctx context.Context, fn func(q Queries) error) error
}

// MoveOutcome bundles the decided move with the game state it produced.
type MoveOutcome struct {
	Game *models.Game
	Move *models.GameMove
}

// Sessions coordinates the validator and state machine with persistence.
// Caller identity is always an explicit parameter.
type Sessions struct {
	store Store
	log   *logrus.Logger
}

func NewSessions(store Store, log *logrus.Logger) *Sessions {
	return &Sessions{store: store, log: log}
}

// Create inserts a new waiting game with the creator registered as player 1.
// Color set shape (3-8 non-empty tokens) is validated at the HTTP boundary.
func (s *Sessions) Create(ctx context.Context, creatorID uuid.UUID, colors []string) (*models.Game, error) {
	now := time.Now().UTC()
	g := &models.Game{
		ID:         uuid.New(),
		CreatorID:  creatorID,
		Colors:     colors,
		Status:     models.StatusWaiting,
		TurnNumber: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.store.Atomic(ctx, func(q Queries) error {
		if err := q.InsertGame(ctx, g); err != nil {
			return err
		}
		return q.InsertPlayer(ctx, &models.GamePlayer{
			ID:           uuid.New(),
			GameID:       g.ID,
			UserID:       creatorID,
			PlayerNumber: 1,
			IsTurn:       true,
			JoinedAt:     now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	return g, nil
}

// Join registers userID as the second player and starts the game. The game
// row stays locked so two joiners cannot both take seat 2.
func (s *Sessions) Join(ctx context.Context, gameID, userID uuid.UUID) (*models.Game, error) {
	var joined *models.Game
	err := s.store.Atomic(ctx, func(q Queries) error {
		g, err := q.GameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Status != models.StatusWaiting {
			return game.ErrGameNotOpen
		}
		if g.CreatorID == userID {
			return game.ErrOwnGame
		}

		players, err := q.PlayersByGame(ctx, gameID)
		if err != nil {
			return err
		}
		for _, p := range players {
			if p.UserID == userID {
				return game.ErrAlreadyJoined
			}
		}
		if len(players) >= 2 {
			return game.ErrGameFull
		}

		if err := q.InsertPlayer(ctx, &models.GamePlayer{
			ID:           uuid.New(),
			GameID:       gameID,
			UserID:       userID,
			PlayerNumber: 2,
			IsTurn:       false,
			JoinedAt:     time.Now().UTC(),
		}); err != nil {
			return err
		}

		game.ApplyJoin(g)
		if err := q.UpdateGame(ctx, g); err != nil {
			return err
		}
		if err := q.SetTurnFlags(ctx, gameID, g.CurrentPlayerID); err != nil {
			return err
		}
		joined = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// SubmitMove runs the full move pipeline for one submission: lock the game,
// check preconditions, derive the expected sequence from the latest move,
// validate, apply the transition, and persist the audit row plus the mutated
// game and turn flags.
func (s *Sessions) SubmitMove(ctx context.Context, gameID, actorID uuid.UUID, sequence []string) (*MoveOutcome, error) {
	var out *MoveOutcome
	err := s.store.Atomic(ctx, func(q Queries) error {
		g, err := q.GameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Status != models.StatusPlaying {
			return game.ErrGameNotPlaying
		}

		opponent, err := s.opponentOf(ctx, q, gameID, actorID)
		if err != nil {
			return err
		}
		if g.CurrentPlayerID == nil || *g.CurrentPlayerID != actorID {
			return game.ErrNotYourTurn
		}

		var expected []string
		last, err := q.LatestMove(ctx, gameID)
		if err != nil {
			return err
		}
		if last != nil {
			expected = last.Sequence
		}

		res := game.ValidateMove(expected, sequence, g.Colors)

		move := &models.GameMove{
			ID:         uuid.New(),
			GameID:     gameID,
			PlayerID:   actorID,
			TurnNumber: g.TurnNumber,
			Sequence:   sequence,
			ColorAdded: res.NewColor,
			IsCorrect:  res.IsCorrect,
			MoveTime:   time.Now().UTC(),
		}
		if err := q.InsertMove(ctx, move); err != nil {
			return err
		}

		game.ApplyMove(g, res, opponent)
		if err := q.UpdateGame(ctx, g); err != nil {
			return err
		}
		if err := q.SetTurnFlags(ctx, gameID, g.CurrentPlayerID); err != nil {
			return err
		}

		out = &MoveOutcome{Game: g, Move: move}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"game":    gameID,
		"player":  actorID,
		"turn":    out.Move.TurnNumber,
		"correct": out.Move.IsCorrect,
	}).Info("move decided")
	return out, nil
}

// Forfeit ends a playing game in the opponent's favor. No move row is
// written; turn counters are untouched.
func (s *Sessions) Forfeit(ctx context.Context, gameID, actorID uuid.UUID) (*models.Game, error) {
	var g *models.Game
	err := s.store.Atomic(ctx, func(q Queries) error {
		var err error
		g, err = q.GameForUpdate(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Status != models.StatusPlaying {
			return game.ErrGameNotPlaying
		}
		opponent, err := s.opponentOf(ctx, q, gameID, actorID)
		if err != nil {
			return err
		}

		game.ApplyForfeit(g, opponent)
		if err := q.UpdateGame(ctx, g); err != nil {
			return err
		}
		return q.SetTurnFlags(ctx, gameID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"game":   gameID,
		"player": actorID,
		"winner": g.WinnerID,
	}).Info("game forfeited")
	return g, nil
}

// opponentOf resolves the other player's user ID, or ErrNotParticipant when
// the actor has no seat in the game.
func (s *Sessions) opponentOf(ctx context.Context, q Queries, gameID, actorID uuid.UUID) (uuid.UUID, error) {
	players, err := q.PlayersByGame(ctx, gameID)
	if err != nil {
		return uuid.Nil, err
	}
	var opponent uuid.UUID
	actorSeated := false
	for _, p := range players {
		if p.UserID == actorID {
			actorSeated = true
		} else {
			opponent = p.UserID
		}
	}
	if !actorSeated {
		return uuid.Nil, game.ErrNotParticipant
	}
	if opponent == uuid.Nil {
		return uuid.Nil, fmt.Errorf("game %s has no opponent seat filled", gameID)
	}
	return opponent, nil
}
