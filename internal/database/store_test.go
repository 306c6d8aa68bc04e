package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simondev/simonsays/internal/game"
)

func TestStringListRoundTrip(t *testing.T) {
	raw, err := encodeStringList([]string{"red", "blue", "blue"})
	require.NoError(t, err)
	assert.Equal(t, `["red","blue","blue"]`, string(raw))

	list, err := decodeStringList(raw, "games.colors")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue", "blue"}, list, "order and duplicates preserved")
}

func TestDecodeStringListRejectsCorruptData(t *testing.T) {
	for _, raw := range []string{`"red,blue"`, `{"0":"red"}`, `[1,2]`, `not json`} {
		_, err := decodeStringList([]byte(raw), "game_moves.sequence")
		require.Error(t, err, raw)

		var integrity *game.IntegrityError
		assert.ErrorAs(t, err, &integrity, raw)
	}
}
