// internal/store/memory_test.go
package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	g := newStoredGame(t)
	require.NoError(t, ms.Replace(ctx, g.ID, g))

	loaded, err := ms.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g, loaded)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ms := NewMemoryStore()
	_, err := ms.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

// Mutating what Get returned, or what was passed to Replace, must not leak
// into the stored record.
func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	g := newStoredGame(t)
	require.NoError(t, ms.Replace(ctx, g.ID, g))

	g.Lives.Used = 99
	loaded, err := ms.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Lives.Used)

	loaded.Hands["alice"] = nil
	again, err := ms.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, again.Hands["alice"], 5)
}
