// internal/database/game.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/simondev/simonsays/internal/game"
	"github.com/simondev/simonsays/internal/models"
)

const gameColumns = `id, creator_id, colors, status, winner_id, current_player_id,
	turn_number, last_color_added, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	var colors []byte
	var status string
	err := row.Scan(
		&g.ID, &g.CreatorID, &colors, &status, &g.WinnerID, &g.CurrentPlayerID,
		&g.TurnNumber, &g.LastColorAdded, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Status = models.GameStatus(status)
	if g.Colors, err = decodeStringList(colors, "games.colors"); err != nil {
		return nil, err
	}
	return &g, nil
}

// GameForUpdate loads a game and locks its row until the transaction ends.
func (q *Queries) GameForUpdate(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id=$1 FOR UPDATE`, gameID)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	return g, err
}

// GameByID loads a game without locking.
func (q *Queries) GameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id=$1`, gameID)
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	return g, err
}

func (q *Queries) InsertGame(ctx context.Context, g *models.Game) error {
	colors, err := encodeStringList(g.Colors)
	if err != nil {
		return fmt.Errorf("encode colors: %w", err)
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO games (id, creator_id, colors, status, turn_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.CreatorID, colors, string(g.Status), g.TurnNumber, g.CreatedAt, g.UpdatedAt,
	)
	return err
}

func (q *Queries) UpdateGame(ctx context.Context, g *models.Game) error {
	ct, err := q.db.Exec(ctx, `
		UPDATE games
		SET status=$1, winner_id=$2, current_player_id=$3, turn_number=$4,
		    last_color_added=$5, updated_at=NOW()
		WHERE id=$6`,
		string(g.Status), g.WinnerID, g.CurrentPlayerID, g.TurnNumber,
		g.LastColorAdded, g.ID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}
	return nil
}

func (q *Queries) InsertPlayer(ctx context.Context, p *models.GamePlayer) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO game_players (id, game_id, user_id, player_number, is_turn, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.GameID, p.UserID, p.PlayerNumber, p.IsTurn, p.JoinedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return game.ErrAlreadyJoined
	}
	return err
}

// PlayersByGame returns the seat rows ordered by player number.
func (q *Queries) PlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, game_id, user_id, player_number, is_turn, joined_at
		FROM game_players
		WHERE game_id=$1
		ORDER BY player_number`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.GamePlayer
	for rows.Next() {
		var p models.GamePlayer
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.PlayerNumber, &p.IsTurn, &p.JoinedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SetTurnFlags marks is_turn for exactly the given player; nil clears all.
func (q *Queries) SetTurnFlags(ctx context.Context, gameID uuid.UUID, current *uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE game_players
		SET is_turn = (user_id IS NOT DISTINCT FROM $2)
		WHERE game_id=$1`, gameID, current)
	return err
}

// InsertMove appends one audit row. A duplicate (game_id, turn_number) means
// a concurrent request already decided this turn.
func (q *Queries) InsertMove(ctx context.Context, m *models.GameMove) error {
	seq, err := encodeStringList(m.Sequence)
	if err != nil {
		return fmt.Errorf("encode sequence: %w", err)
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO game_moves (id, game_id, player_id, turn_number, sequence, color_added, is_correct, move_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.GameID, m.PlayerID, m.TurnNumber, seq, m.ColorAdded, m.IsCorrect, m.MoveTime,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return game.ErrTurnConflict
	}
	return err
}

// LatestMove returns the highest-turn move for a game, or nil when none exist.
func (q *Queries) LatestMove(ctx context.Context, gameID uuid.UUID) (*models.GameMove, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, game_id, player_id, turn_number, sequence, color_added, is_correct, move_time
		FROM game_moves
		WHERE game_id=$1
		ORDER BY turn_number DESC
		LIMIT 1`, gameID)

	m, err := scanMove(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func scanMove(row pgx.Row) (*models.GameMove, error) {
	var m models.GameMove
	var seq []byte
	err := row.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.TurnNumber, &seq,
		&m.ColorAdded, &m.IsCorrect, &m.MoveTime)
	if err != nil {
		return nil, err
	}
	if m.Sequence, err = decodeStringList(seq, "game_moves.sequence"); err != nil {
		return nil, err
	}
	return &m, nil
}

/* ------------------------- pool-level read API -------------------------- */

// GameDetail aggregates a game with the user identities its views need.
type GameDetail struct {
	Game          *models.Game
	Creator       *models.UserInfo
	CurrentPlayer *models.UserInfo
	Winner        *models.UserInfo
	Players       []models.GamePlayer
}

// GameDetail loads a game with creator/current/winner identities and seat
// rows (each carrying its user). Returns game.ErrGameNotFound if absent.
func (s *Store) GameDetail(ctx context.Context, gameID uuid.UUID) (*GameDetail, error) {
	g, err := s.queries().GameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.assembleDetail(ctx, g)
}

func (s *Store) assembleDetail(ctx context.Context, g *models.Game) (*GameDetail, error) {
	d := &GameDetail{Game: g}

	var err error
	if d.Creator, err = s.userInfo(ctx, g.CreatorID); err != nil {
		return nil, err
	}
	if g.CurrentPlayerID != nil {
		if d.CurrentPlayer, err = s.userInfo(ctx, *g.CurrentPlayerID); err != nil {
			return nil, err
		}
	}
	if g.WinnerID != nil {
		if d.Winner, err = s.userInfo(ctx, *g.WinnerID); err != nil {
			return nil, err
		}
	}

	if d.Players, err = s.playersWithUsers(ctx, g.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) playersWithUsers(ctx context.Context, gameID uuid.UUID) ([]models.GamePlayer, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT p.id, p.game_id, p.user_id, p.player_number, p.is_turn, p.joined_at,
		       u.id, u.full_name, u.email
		FROM game_players p
		JOIN users u ON u.id = p.user_id
		WHERE p.game_id=$1
		ORDER BY p.player_number`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.GamePlayer
	for rows.Next() {
		var p models.GamePlayer
		var u models.UserInfo
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.PlayerNumber, &p.IsTurn, &p.JoinedAt,
			&u.ID, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		p.User = &u
		players = append(players, p)
	}
	return players, rows.Err()
}

// ListOpenGames returns all waiting games, newest first, with creator and
// seat rows attached.
func (s *Store) ListOpenGames(ctx context.Context) ([]GameDetail, error) {
	return s.listGames(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE status='waiting'
		ORDER BY created_at DESC`)
}

// ListGamesByUser returns every game the user holds a seat in, newest first.
func (s *Store) ListGamesByUser(ctx context.Context, userID uuid.UUID) ([]GameDetail, error) {
	return s.listGames(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE id IN (SELECT game_id FROM game_players WHERE user_id=$1)
		ORDER BY created_at DESC`, userID)
}

func (s *Store) listGames(ctx context.Context, query string, args ...any) ([]GameDetail, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := make([]GameDetail, 0, len(games))
	for _, g := range games {
		d, err := s.assembleDetail(ctx, g)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// MovesByGame returns the full move history in turn order with each mover's
// identity attached.
func (s *Store) MovesByGame(ctx context.Context, gameID uuid.UUID) ([]models.GameMove, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT m.id, m.game_id, m.player_id, m.turn_number, m.sequence,
		       m.color_added, m.is_correct, m.move_time,
		       u.id, u.full_name, u.email
		FROM game_moves m
		JOIN users u ON u.id = m.player_id
		WHERE m.game_id=$1
		ORDER BY m.turn_number ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var moves []models.GameMove
	for rows.Next() {
		var m models.GameMove
		var u models.UserInfo
		var seq []byte
		if err := rows.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.TurnNumber, &seq,
			&m.ColorAdded, &m.IsCorrect, &m.MoveTime,
			&u.ID, &u.FullName, &u.Email); err != nil {
			return nil, err
		}
		if m.Sequence, err = decodeStringList(seq, "game_moves.sequence"); err != nil {
			return nil, err
		}
		m.Player = &u
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// LatestMove is the pool-level variant used by the state endpoint.
func (s *Store) LatestMove(ctx context.Context, gameID uuid.UUID) (*models.GameMove, error) {
	return s.queries().LatestMove(ctx, gameID)
}
