// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/florets/hanabi/internal/game"
)

// PostgresStore keeps each game as a jsonb row. Row-level upsert gives the
// single-record atomicity the store contract asks for.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects using the POSTGRES_USER/POSTGRES_PASSWORD/
// PG_HOST/PG_PORT/PG_DATABASE environment variables and ensures the games
// table exists.
func NewPostgresStore(ctx context.Context) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS hanabi_games (
			id UUID PRIMARY KEY,
			record JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure hanabi_games table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	var record []byte
	q := `SELECT record FROM hanabi_games WHERE id = $1`
	if err := s.pool.QueryRow(ctx, q, id).Scan(&record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("select game %s: %w", id, err)
	}
	var g game.Game
	if err := json.Unmarshal(record, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *PostgresStore) Replace(ctx context.Context, id uuid.UUID, g *game.Game) error {
	record, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", id, err)
	}
	q := `
		INSERT INTO hanabi_games (id, record, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET record = $2, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, q, id, record); err != nil {
		return fmt.Errorf("upsert game %s: %w", id, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
