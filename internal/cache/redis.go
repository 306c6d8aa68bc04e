// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client wraps Redis for the two jobs this service gives it: a short-lived
// snapshot cache behind the polled game-state endpoints, and a token
// denylist that makes logout effective before the JWT expires. The service
// runs fine without it; callers treat a nil *Client as "no cache".
type Client struct {
	rdb         *redis.Client
	snapshotTTL time.Duration
}

// Connect initializes a client from REDIS_ADDR / REDIS_DB / SNAPSHOT_TTL_MS.
func Connect(ctx context.Context) (*Client, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)
	ttlMs := getEnvInt("SNAPSHOT_TTL_MS", 3000)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Client{rdb: rdb, snapshotTTL: time.Duration(ttlMs) * time.Millisecond}, nil
}

func gameKey(gameID uuid.UUID) string { return "simonsays:game:" + gameID.String() }
func tokenKey(token string) string    { return "simonsays:revoked:" + token }

// GetSnapshot loads a cached game snapshot into dest. The second return is
// false on a miss.
func (c *Client) GetSnapshot(ctx context.Context, gameID uuid.UUID, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, gameKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// stale or foreign payload; treat as a miss
		return false, nil
	}
	return true, nil
}

// SetSnapshot stores a game snapshot with the configured TTL.
func (c *Client) SetSnapshot(ctx context.Context, gameID uuid.UUID, snapshot any) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, gameKey(gameID), raw, c.snapshotTTL).Err()
}

// InvalidateGame drops the snapshot after any mutation of the game.
func (c *Client) InvalidateGame(ctx context.Context, gameID uuid.UUID) error {
	return c.rdb.Del(ctx, gameKey(gameID)).Err()
}

// RevokeToken denylists a token until it would expire anyway.
func (c *Client) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		// tokens without expiry stay revoked for a long, bounded window
		ttl = 30 * 24 * time.Hour
	}
	return c.rdb.Set(ctx, tokenKey(token), "1", ttl).Err()
}

// IsTokenRevoked reports whether a token has been denylisted by logout.
func (c *Client) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	n, err := c.rdb.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
