// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/florets/hanabi/internal/game"
)

// MemoryStore is the in-process store used by tests and by dev setups that
// don't care about durability. Records are cloned on the way in and out so
// callers never share state with the map.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*game.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[uuid.UUID]*game.Game)}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g.Clone(), nil
}

func (s *MemoryStore) Replace(_ context.Context, id uuid.UUID, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[id] = g.Clone()
	return nil
}
