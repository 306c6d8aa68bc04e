// internal/game/state.go
//
// Turn/state transitions. These mutate only the in-memory Game; callers are
// responsible for preconditions (status, turn ownership) and persistence.
package game

import (
	"github.com/google/uuid"

	"github.com/simondev/simonsays/internal/models"
)

// ApplyMove advances the game after a validated submission. On a correct
// move the turn passes to the opponent; on an incorrect one the game ends
// and the opponent wins. TurnNumber and LastColorAdded are untouched by an
// incorrect move: the failed attempt lives only in the move log.
func ApplyMove(g *models.Game, res MoveResult, otherPlayer uuid.UUID) {
	if res.IsCorrect {
		current := otherPlayer
		color := res.NewColor
		g.CurrentPlayerID = &current
		g.TurnNumber++
		g.LastColorAdded = &color
		return
	}
	finish(g, otherPlayer)
}

// ApplyForfeit ends a playing game in the opponent's favor. No move record
// accompanies a forfeit.
func ApplyForfeit(g *models.Game, opponent uuid.UUID) {
	finish(g, opponent)
}

// ApplyJoin transitions a waiting game to playing once the second player is
// registered. The creator always takes the first turn.
func ApplyJoin(g *models.Game) {
	creator := g.CreatorID
	g.Status = models.StatusPlaying
	g.CurrentPlayerID = &creator
	g.TurnNumber = 1
}

func finish(g *models.Game, winner uuid.UUID) {
	w := winner
	g.Status = models.StatusFinished
	g.WinnerID = &w
	g.CurrentPlayerID = nil
}
