// internal/store/redis.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/florets/hanabi/internal/game"
)

const redisKeyPrefix = "hanabi:game:"

// RedisStore keeps each game record as one JSON value; SET is atomic per
// key, which satisfies the single-record store contract.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to REDIS_ADDR (default localhost:6379) / REDIS_DB
// and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *RedisStore) Replace(ctx context.Context, id uuid.UUID, g *game.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", id, err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("set game %s: %w", id, err)
	}
	return nil
}
