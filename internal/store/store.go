// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/florets/hanabi/internal/game"
)

// ErrNotFound means no record exists under the requested game id.
var ErrNotFound = errors.New("record not found")

// Store is the durable home of game records, keyed by game id. Get and
// Replace are each atomic at single-record granularity; cross-call ordering
// is the service layer's job, which holds the per-game exclusive lock across
// its whole load-mutate-persist sequence. Implementations must return
// records that do not alias their internal state.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*game.Game, error)
	Replace(ctx context.Context, id uuid.UUID, g *game.Game) error
}
