// internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/florets/hanabi/internal/cache"
	"github.com/florets/hanabi/internal/game"
	"github.com/florets/hanabi/internal/store"
)

// DefaultLockWait bounds how long a mutating call waits for a game's
// exclusive lock before reporting ErrBusy.
const DefaultLockWait = 2 * time.Second

// ActionPublisher receives every accepted mutating action. Implemented by
// cache.Publisher; nil disables the feed.
type ActionPublisher interface {
	PublishAction(ctx context.Context, record cache.ActionRecord) error
}

// Service orchestrates actions end to end: acquire the game's exclusive
// lock, load the record, validate, let the engine mutate, persist, then feed
// the action queue and watch notifier. Reads skip the lock and work on the
// snapshot the store returns.
type Service struct {
	Store  store.Store
	Logger *logrus.Logger
	Rules  game.Rules

	// Publisher, when set, receives every accepted action (best-effort).
	Publisher ActionPublisher

	// Notify, when set, is called after each persisted mutation so live
	// watchers can be refreshed.
	Notify func(gameID uuid.UUID)

	locks *gameLocks
}

// New builds a Service over the given store with the standard rules and the
// default lock bound.
func New(st store.Store, logger *logrus.Logger) *Service {
	return &Service{
		Store:  st,
		Logger: logger,
		Rules:  game.StandardRules(),
		locks:  newGameLocks(DefaultLockWait),
	}
}

// SetLockWait overrides the bounded lock wait (used by tests and tuned
// deployments). Must be called before the service handles requests.
func (s *Service) SetLockWait(wait time.Duration) {
	s.locks = newGameLocks(wait)
}

// CreateGame builds, persists and registers a new game, returning its id.
func (s *Service) CreateGame(ctx context.Context, players []string) (uuid.UUID, error) {
	g, err := game.NewGame(players, s.Rules)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.Store.Replace(ctx, g.ID, g); err != nil {
		return uuid.Nil, fmt.Errorf("persist new game: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{
		"game":    g.ID,
		"players": g.Players,
	}).Info("game created")
	s.publish(ctx, g.ID, "", "create_game", map[string]interface{}{"players": players})
	return g.ID, nil
}

// GetState returns the projection of the game the viewer may see. A nil
// viewer is the spectator projection with hands and deck intact.
func (s *Service) GetState(ctx context.Context, id uuid.UUID, viewer *string) (*game.View, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.View(viewer)
}

// History returns the log lines the viewer may see.
func (s *Service) History(ctx context.Context, id uuid.UUID, viewer *string) ([]string, error) {
	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.History(viewer), nil
}

// Play resolves one play action under the game's exclusive lock.
func (s *Service) Play(ctx context.Context, id uuid.UUID, player string, cardIndex int) (game.PlayResult, error) {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return game.PlayResult{}, err
	}
	defer release()

	g, err := s.load(ctx, id)
	if err != nil {
		return game.PlayResult{}, err
	}
	result, err := g.ApplyPlay(player, cardIndex)
	if err != nil {
		return result, err
	}
	if err := s.persist(ctx, g); err != nil {
		return game.PlayResult{}, err
	}

	s.Logger.WithFields(logrus.Fields{
		"game":      id,
		"player":    player,
		"index":     cardIndex,
		"played":    result.Played,
		"game_over": result.GameOver,
	}).Info("play resolved")
	s.publish(ctx, id, player, "play", map[string]interface{}{
		"card_index": cardIndex,
		"played":     result.Played,
		"game_over":  result.GameOver,
	})
	return result, nil
}

// Discard resolves one discard action under the game's exclusive lock.
func (s *Service) Discard(ctx context.Context, id uuid.UUID, player string, cardIndex int) error {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	g, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := g.ApplyDiscard(player, cardIndex); err != nil {
		return err
	}
	if err := s.persist(ctx, g); err != nil {
		return err
	}

	s.Logger.WithFields(logrus.Fields{
		"game":   id,
		"player": player,
		"index":  cardIndex,
	}).Info("discard resolved")
	s.publish(ctx, id, player, "discard", map[string]interface{}{"card_index": cardIndex})
	return nil
}

// Hint answers a hint request, returning the matching hand positions. The
// exclusive lock is still taken: a hint appends to the log and so is a
// mutation of the record like any other.
func (s *Service) Hint(ctx context.Context, id uuid.UUID, requester, recipient string, colour *game.Colour, rank *int) ([]int, error) {
	release, err := s.locks.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	g, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	positions, err := g.ApplyHint(requester, recipient, colour, rank)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, g); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{"recipient": recipient, "positions": positions}
	if colour != nil {
		payload["colour"] = *colour
	}
	if rank != nil {
		payload["rank"] = *rank
	}
	s.Logger.WithFields(logrus.Fields{
		"game":      id,
		"requester": requester,
		"recipient": recipient,
	}).Info("hint resolved")
	s.publish(ctx, id, requester, "hint", payload)
	return positions, nil
}

// load fetches the record, translating the store's not-found into the
// engine's ErrUnknownGame so callers classify one taxonomy.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	g, err := s.Store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownGame, id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// persist writes the fully mutated record back. The store replace is the
// only non-atomic hazard in the sequence; nothing is written until the whole
// in-memory mutation has succeeded.
func (s *Service) persist(ctx context.Context, g *game.Game) error {
	if err := s.Store.Replace(ctx, g.ID, g); err != nil {
		return fmt.Errorf("persist game %s: %w", g.ID, err)
	}
	if s.Notify != nil {
		s.Notify(g.ID)
	}
	return nil
}

// publish feeds the action queue; failures are logged, never surfaced.
func (s *Service) publish(ctx context.Context, id uuid.UUID, actor, action string, payload map[string]interface{}) {
	if s.Publisher == nil {
		return
	}
	record := cache.ActionRecord{
		GameID:  id,
		Actor:   actor,
		Action:  action,
		Payload: payload,
	}
	if err := s.Publisher.PublishAction(ctx, record); err != nil {
		s.Logger.WithError(err).WithField("game", id).Warn("action publish failed")
	}
}
