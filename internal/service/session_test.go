package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simondev/simonsays/internal/game"
	"github.com/simondev/simonsays/internal/models"
)

// fakeStore is an in-memory Store/Queries pair. Atomic runs the function
// directly against the maps; the tests only exercise single transactions, so
// rollback fidelity is not needed.
type fakeStore struct {
	games   map[uuid.UUID]*models.Game
	players map[uuid.UUID][]models.GamePlayer
	moves   map[uuid.UUID][]models.GameMove
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		games:   map[uuid.UUID]*models.Game{},
		players: map[uuid.UUID][]models.GamePlayer{},
		moves:   map[uuid.UUID][]models.GameMove{},
	}
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(q Queries) error) error {
	return fn(f)
}

func (f *fakeStore) GameForUpdate(_ context.Context, gameID uuid.UUID) (*models.Game, error) {
	g, ok := f.games[gameID]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) PlayersByGame(_ context.Context, gameID uuid.UUID) ([]models.GamePlayer, error) {
	return f.players[gameID], nil
}

func (f *fakeStore) LatestMove(_ context.Context, gameID uuid.UUID) (*models.GameMove, error) {
	moves := f.moves[gameID]
	var latest *models.GameMove
	for i := range moves {
		if latest == nil || moves[i].TurnNumber > latest.TurnNumber {
			latest = &moves[i]
		}
	}
	return latest, nil
}

func (f *fakeStore) InsertGame(_ context.Context, g *models.Game) error {
	cp := *g
	f.games[g.ID] = &cp
	return nil
}

func (f *fakeStore) InsertPlayer(_ context.Context, p *models.GamePlayer) error {
	for _, existing := range f.players[p.GameID] {
		if existing.UserID == p.UserID {
			return game.ErrAlreadyJoined
		}
	}
	f.players[p.GameID] = append(f.players[p.GameID], *p)
	return nil
}

func (f *fakeStore) InsertMove(_ context.Context, m *models.GameMove) error {
	for _, existing := range f.moves[m.GameID] {
		if existing.TurnNumber == m.TurnNumber {
			return game.ErrTurnConflict
		}
	}
	f.moves[m.GameID] = append(f.moves[m.GameID], *m)
	return nil
}

func (f *fakeStore) UpdateGame(_ context.Context, g *models.Game) error {
	if _, ok := f.games[g.ID]; !ok {
		return game.ErrGameNotFound
	}
	cp := *g
	f.games[g.ID] = &cp
	return nil
}

func (f *fakeStore) SetTurnFlags(_ context.Context, gameID uuid.UUID, current *uuid.UUID) error {
	players := f.players[gameID]
	for i := range players {
		players[i].IsTurn = current != nil && players[i].UserID == *current
	}
	return nil
}

func testSessions(store *fakeStore) *Sessions {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSessions(store, log)
}

func startedGame(t *testing.T, store *fakeStore, s *Sessions) (gameID, creator, joiner uuid.UUID) {
	t.Helper()
	creator, joiner = uuid.New(), uuid.New()
	g, err := s.Create(context.Background(), creator, []string{"red", "blue", "green"})
	require.NoError(t, err)
	_, err = s.Join(context.Background(), g.ID, joiner)
	require.NoError(t, err)
	return g.ID, creator, joiner
}

func TestCreateRegistersCreatorAsPlayerOne(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	creator := uuid.New()

	g, err := s.Create(context.Background(), creator, []string{"red", "blue", "green"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusWaiting, g.Status)
	assert.Equal(t, 0, g.TurnNumber)

	players := store.players[g.ID]
	require.Len(t, players, 1)
	assert.Equal(t, creator, players[0].UserID)
	assert.Equal(t, 1, players[0].PlayerNumber)
	assert.True(t, players[0].IsTurn)
}

func TestJoinStartsGame(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, joiner := startedGame(t, store, s)

	g := store.games[gameID]
	assert.Equal(t, models.StatusPlaying, g.Status)
	require.NotNil(t, g.CurrentPlayerID)
	assert.Equal(t, creator, *g.CurrentPlayerID)
	assert.Equal(t, 1, g.TurnNumber)

	players := store.players[gameID]
	require.Len(t, players, 2)
	assert.Equal(t, joiner, players[1].UserID)
	assert.True(t, players[0].IsTurn)
	assert.False(t, players[1].IsTurn)
}

func TestJoinRejectsCreator(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	creator := uuid.New()
	g, err := s.Create(context.Background(), creator, []string{"red", "blue", "green"})
	require.NoError(t, err)

	_, err = s.Join(context.Background(), g.ID, creator)
	assert.ErrorIs(t, err, game.ErrOwnGame)
}

func TestJoinRejectsStartedGame(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, _, _ := startedGame(t, store, s)

	_, err := s.Join(context.Background(), gameID, uuid.New())
	assert.ErrorIs(t, err, game.ErrGameNotOpen)
}

func TestJoinUnknownGame(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)

	_, err := s.Join(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, game.ErrGameNotFound)
}

func TestSubmitMoveCorrectPassesTurn(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, joiner := startedGame(t, store, s)

	out, err := s.SubmitMove(context.Background(), gameID, creator, []string{"red"})
	require.NoError(t, err)

	assert.True(t, out.Move.IsCorrect)
	assert.Equal(t, "red", out.Move.ColorAdded)
	assert.Equal(t, 1, out.Move.TurnNumber)
	assert.Equal(t, 2, out.Game.TurnNumber)
	require.NotNil(t, out.Game.CurrentPlayerID)
	assert.Equal(t, joiner, *out.Game.CurrentPlayerID)

	// joiner extends
	out, err = s.SubmitMove(context.Background(), gameID, joiner, []string{"red", "blue"})
	require.NoError(t, err)
	assert.True(t, out.Move.IsCorrect)
	assert.Equal(t, 3, out.Game.TurnNumber)
	assert.Equal(t, creator, *out.Game.CurrentPlayerID)
}

func TestSubmitMoveIncorrectEndsGame(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, joiner := startedGame(t, store, s)

	_, err := s.SubmitMove(context.Background(), gameID, creator, []string{"red"})
	require.NoError(t, err)

	out, err := s.SubmitMove(context.Background(), gameID, joiner, []string{"blue", "green"})
	require.NoError(t, err)

	assert.False(t, out.Move.IsCorrect)
	assert.Equal(t, models.StatusFinished, out.Game.Status)
	require.NotNil(t, out.Game.WinnerID)
	assert.Equal(t, creator, *out.Game.WinnerID)
	assert.Nil(t, out.Game.CurrentPlayerID)

	// failed attempt is in the audit log with the attempted tail color
	require.Len(t, store.moves[gameID], 2)
	assert.Equal(t, "green", store.moves[gameID][1].ColorAdded)
}

func TestSubmitMoveOutOfTurn(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, _, joiner := startedGame(t, store, s)

	_, err := s.SubmitMove(context.Background(), gameID, joiner, []string{"red"})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
}

func TestSubmitMoveNonParticipant(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, _, _ := startedGame(t, store, s)

	_, err := s.SubmitMove(context.Background(), gameID, uuid.New(), []string{"red"})
	assert.ErrorIs(t, err, game.ErrNotParticipant)
}

func TestSubmitMoveBeforeStart(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	creator := uuid.New()
	g, err := s.Create(context.Background(), creator, []string{"red", "blue", "green"})
	require.NoError(t, err)

	_, err = s.SubmitMove(context.Background(), g.ID, creator, []string{"red"})
	assert.ErrorIs(t, err, game.ErrGameNotPlaying)
}

func TestSubmitMoveTurnConflict(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, _ := startedGame(t, store, s)

	// a concurrent request already committed turn 1
	store.moves[gameID] = append(store.moves[gameID], models.GameMove{
		ID: uuid.New(), GameID: gameID, PlayerID: creator,
		TurnNumber: 1, Sequence: []string{"red"}, ColorAdded: "red",
		IsCorrect: true, MoveTime: time.Now(),
	})

	_, err := s.SubmitMove(context.Background(), gameID, creator, []string{"blue"})
	assert.ErrorIs(t, err, game.ErrTurnConflict)
}

func TestForfeit(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, joiner := startedGame(t, store, s)

	g, err := s.Forfeit(context.Background(), gameID, creator)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinished, g.Status)
	require.NotNil(t, g.WinnerID)
	assert.Equal(t, joiner, *g.WinnerID)
	assert.Empty(t, store.moves[gameID], "forfeit writes no move row")

	for _, p := range store.players[gameID] {
		assert.False(t, p.IsTurn)
	}
}

func TestForfeitFinishedGame(t *testing.T) {
	store := newFakeStore()
	s := testSessions(store)
	gameID, creator, _ := startedGame(t, store, s)

	_, err := s.Forfeit(context.Background(), gameID, creator)
	require.NoError(t, err)

	_, err = s.Forfeit(context.Background(), gameID, creator)
	assert.ErrorIs(t, err, game.ErrGameNotPlaying)
}
