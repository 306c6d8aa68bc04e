// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/simondev/simonsays/internal/auth"
	"github.com/simondev/simonsays/internal/models"
)

// ErrEmailTaken reports a registration against an email that already exists.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials covers both unknown emails and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateUser hashes the password and inserts the row, assigning an ID if the
// caller did not.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	err = pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, `
			INSERT INTO users (id, full_name, email, password)
			VALUES ($1, $2, $3, $4)`,
			user.ID, user.FullName, user.Email, user.Password,
		)
		return execErr
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUserRow(s.Pool.QueryRow(ctx, `
		SELECT id, full_name, email, password, created_at
		FROM users WHERE email=$1`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUserRow(s.Pool.QueryRow(ctx, `
		SELECT id, full_name, email, password, created_at
		FROM users WHERE id=$1`, id))
}

func scanUserRow(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate resolves email+password to a user, or ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Store) userInfo(ctx context.Context, id uuid.UUID) (*models.UserInfo, error) {
	var u models.UserInfo
	err := s.Pool.QueryRow(ctx, `
		SELECT id, full_name, email FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.FullName, &u.Email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
