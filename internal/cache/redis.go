// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the action feed is pushed onto.
var DefaultQueueName = "hanabi_actions"

// ActionRecord is one accepted game action, queued for external history
// tooling. It mirrors what the public log records, in structured form.
type ActionRecord struct {
	GameID    uuid.UUID              `json:"game_id"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Publisher pushes accepted actions onto a Redis queue. It is best-effort:
// the service treats publish failures as log-worthy, not fatal, since the
// authoritative record has already been persisted by then.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// NewPublisher connects using REDIS_ADDR (default localhost:6379), REDIS_DB
// and HANABI_ACTION_QUEUE for the queue name.
func NewPublisher(ctx context.Context) (*Publisher, error) {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &Publisher{
		rdb:   rdb,
		queue: getEnv("HANABI_ACTION_QUEUE", DefaultQueueName),
	}, nil
}

// PublishAction serializes the record and pushes it onto the queue.
func (p *Publisher) PublishAction(ctx context.Context, record ActionRecord) error {
	if record.Timestamp == 0 {
		record.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("rpush to redis list %q: %w", p.queue, err)
	}
	return nil
}

// getEnv reads an environment variable or returns the default.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as an integer, else the default.
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
