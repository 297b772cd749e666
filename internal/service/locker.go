// internal/service/locker.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/florets/hanabi/internal/game"
)

// gameLocks hands out one exclusive lock per game id. The lock is held
// across a whole load-validate-mutate-persist sequence; acquisition waits at
// most the configured bound and then fails with ErrBusy so a contended game
// surfaces as a retryable condition instead of a pile-up.
type gameLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
	wait  time.Duration
}

func newGameLocks(wait time.Duration) *gameLocks {
	return &gameLocks{
		locks: make(map[uuid.UUID]chan struct{}),
		wait:  wait,
	}
}

// semaphore returns the single-slot channel for the game, creating it on
// first use. Entries are never removed; games are never deleted either.
func (l *gameLocks) semaphore(id uuid.UUID) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.locks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[id] = sem
	}
	return sem
}

// acquire takes the game's exclusive lock, returning a release func. It
// fails with ErrBusy after the bounded wait, or with the context's error if
// the caller gives up first. Callers must release on every exit path.
func (l *gameLocks) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	sem := l.semaphore(id)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: lock on game %s not acquired within %s", game.ErrBusy, id, l.wait)
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire lock on game %s: %w", id, ctx.Err())
	}
}
