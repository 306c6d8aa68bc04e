// internal/database/store.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simondev/simonsays/internal/game"
	"github.com/simondev/simonsays/internal/service"
)

// Store is the Postgres-backed repository. Reads run directly on the pool;
// mutations go through Atomic so every decision and its writes share one
// transaction.
type Store struct {
	Pool *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries implements service.Queries over either the pool or a transaction.
type Queries struct {
	db querier
}

// Atomic runs fn inside a single transaction; rollback on any error.
func (s *Store) Atomic(ctx context.Context, fn func(q service.Queries) error) error {
	return pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&Queries{db: tx})
	})
}

func (s *Store) queries() *Queries { return &Queries{db: s.Pool} }

// encodeStringList produces the canonical storage encoding for colors and
// sequences: a JSON string array, order-preserving, no deduplication.
func encodeStringList(list []string) ([]byte, error) {
	return json.Marshal(list)
}

// decodeStringList strictly decodes the canonical encoding. Anything else in
// the column is corrupt data and is reported, never coerced.
func decodeStringList(raw []byte, column string) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &game.IntegrityError{
			Detail: fmt.Sprintf("column %s does not hold a JSON string array", column),
			Err:    err,
		}
	}
	return list, nil
}
