// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle state of a game. Transitions are one-directional:
// waiting -> playing -> finished.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// Game represents a row in the games table. Colors is the ordered list of
// permissible color tokens chosen at creation; order is preserved end to end.
type Game struct {
	ID              uuid.UUID  `json:"id"`
	CreatorID       uuid.UUID  `json:"creatorId"`
	Colors          []string   `json:"colors"`
	Status          GameStatus `json:"status"`
	WinnerID        *uuid.UUID `json:"winnerId"`
	CurrentPlayerID *uuid.UUID `json:"currentPlayerId"`
	TurnNumber      int        `json:"turnNumber"`
	LastColorAdded  *string    `json:"lastColorAdded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GamePlayer links a game to a user. At most two rows exist per game;
// IsTurn mirrors whether this player equals the game's CurrentPlayerID.
type GamePlayer struct {
	ID           uuid.UUID `json:"id"`
	GameID       uuid.UUID `json:"gameId"`
	UserID       uuid.UUID `json:"userId"`
	PlayerNumber int       `json:"playerNumber"`
	IsTurn       bool      `json:"isTurn"`
	JoinedAt     time.Time `json:"joinedAt"`

	User *UserInfo `json:"user,omitempty"`
}

// GameMove is an immutable audit record of a single submission. Sequence is
// the full ordered sequence the player sent; the most recent move per game
// (by TurnNumber descending) defines the expected sequence for the next one.
type GameMove struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	PlayerID   uuid.UUID `json:"playerId"`
	TurnNumber int       `json:"turnNumber"`
	Sequence   []string  `json:"sequence"`
	ColorAdded string    `json:"colorAdded"`
	IsCorrect  bool      `json:"isCorrect"`
	MoveTime   time.Time `json:"moveTime"`

	Player *UserInfo `json:"player,omitempty"`
}
