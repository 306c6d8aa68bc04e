package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simondev/simonsays/internal/models"
)

func playingGame(creator, _ uuid.UUID) *models.Game {
	current := creator
	return &models.Game{
		ID:              uuid.New(),
		CreatorID:       creator,
		Colors:          []string{"red", "blue", "green"},
		Status:          models.StatusPlaying,
		CurrentPlayerID: &current,
		TurnNumber:      1,
	}
}

func TestApplyJoinStartsGame(t *testing.T) {
	creator := uuid.New()
	g := &models.Game{ID: uuid.New(), CreatorID: creator, Status: models.StatusWaiting}

	ApplyJoin(g)

	assert.Equal(t, models.StatusPlaying, g.Status)
	require.NotNil(t, g.CurrentPlayerID)
	assert.Equal(t, creator, *g.CurrentPlayerID, "creator takes the first turn")
	assert.Equal(t, 1, g.TurnNumber)
}

func TestApplyMoveCorrectPassesTurn(t *testing.T) {
	creator, opponent := uuid.New(), uuid.New()
	g := playingGame(creator, opponent)

	ApplyMove(g, MoveResult{IsCorrect: true, NewColor: "blue"}, opponent)

	assert.Equal(t, models.StatusPlaying, g.Status)
	require.NotNil(t, g.CurrentPlayerID)
	assert.Equal(t, opponent, *g.CurrentPlayerID)
	assert.Equal(t, 2, g.TurnNumber)
	require.NotNil(t, g.LastColorAdded)
	assert.Equal(t, "blue", *g.LastColorAdded)
	assert.Nil(t, g.WinnerID)
}

func TestApplyMoveIncorrectEndsGame(t *testing.T) {
	creator, opponent := uuid.New(), uuid.New()
	g := playingGame(creator, opponent)

	ApplyMove(g, MoveResult{IsCorrect: false, NewColor: "green"}, opponent)

	assert.Equal(t, models.StatusFinished, g.Status)
	require.NotNil(t, g.WinnerID)
	assert.Equal(t, opponent, *g.WinnerID)
	assert.Nil(t, g.CurrentPlayerID)
	assert.Equal(t, 1, g.TurnNumber, "failed move does not advance the turn counter")
	assert.Nil(t, g.LastColorAdded, "failed attempt is not promoted to the shared sequence")
}

func TestApplyForfeit(t *testing.T) {
	creator, opponent := uuid.New(), uuid.New()
	g := playingGame(creator, opponent)
	g.TurnNumber = 5

	ApplyForfeit(g, opponent)

	assert.Equal(t, models.StatusFinished, g.Status)
	require.NotNil(t, g.WinnerID)
	assert.Equal(t, opponent, *g.WinnerID)
	assert.Nil(t, g.CurrentPlayerID)
	assert.Equal(t, 5, g.TurnNumber)
}

// Full exchange: red, red-blue, red-blue-green, then a wrong replay.
func TestRallyThenDeviation(t *testing.T) {
	creator, opponent := uuid.New(), uuid.New()
	g := &models.Game{ID: uuid.New(), CreatorID: creator, Status: models.StatusWaiting,
		Colors: []string{"red", "blue", "green"}}
	ApplyJoin(g)

	moves := [][]string{
		{"red"},
		{"red", "blue"},
		{"red", "blue", "green"},
	}
	actors := []uuid.UUID{creator, opponent, creator}
	others := []uuid.UUID{opponent, creator, opponent}

	var expected []string
	for i, seq := range moves {
		assert.Equal(t, actors[i], *g.CurrentPlayerID)
		res := ValidateMove(expected, seq, g.Colors)
		require.True(t, res.IsCorrect)
		ApplyMove(g, res, others[i])
		expected = seq
	}
	assert.Equal(t, 4, g.TurnNumber)
	assert.Equal(t, opponent, *g.CurrentPlayerID)

	// opponent replays the wrong third element
	res := ValidateMove(expected, []string{"red", "blue", "red", "green"}, g.Colors)
	require.False(t, res.IsCorrect)
	ApplyMove(g, res, creator)

	assert.Equal(t, models.StatusFinished, g.Status)
	assert.Equal(t, creator, *g.WinnerID)
}
