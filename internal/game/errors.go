// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
)

// Sentinel errors for illegal requests against current game state. Handlers
// map these to HTTP statuses; none of them implies a partial write.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotOpen    = errors.New("game is no longer open")
	ErrGameNotPlaying = errors.New("game is not in progress")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotParticipant = errors.New("not a player in this game")
	ErrGameFull       = errors.New("game is full")
	ErrOwnGame        = errors.New("cannot join your own game")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrTurnConflict   = errors.New("a move for this turn was already accepted")
)

// IntegrityError reports persisted data that violates its expected shape,
// e.g. a stored sequence that no longer decodes as a JSON string array.
// It must never be coerced into a valid-looking empty state.
type IntegrityError struct {
	Detail string
	Err    error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data integrity: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("data integrity: %s", e.Detail)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
