// internal/game/view.go
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// View is the projection of a Game a given viewer is permitted to see.
// A player's own hand is withheld (they hold it face-out) and the deck is
// withheld entirely so draw order can never be inferred; the spectator
// projection carries everything and is reserved for trusted callers.
type View struct {
	ID      uuid.UUID         `json:"id"`
	Players []string          `json:"players"`
	Hands   map[string][]Card `json:"hands"`
	Deck    []Card            `json:"deck,omitempty"`

	DeckSize int    `json:"deck_size"`
	Discards []Card `json:"discards"`
	Played   []Card `json:"played"`

	Knowledge Counters `json:"knowledge"`
	Lives     Counters `json:"lives"`

	GameOver bool `json:"game_over"`
	Won      bool `json:"won"`
}

// View projects the record for the given viewer. A nil viewer is the
// spectator/omniscient projection. A named viewer must be a member player.
func (g *Game) View(viewer *string) (*View, error) {
	if viewer != nil && !g.hasPlayer(*viewer) {
		return nil, fmt.Errorf("%w: %q is not in this game", ErrUnknownPlayer, *viewer)
	}

	v := &View{
		ID:        g.ID,
		Players:   append([]string(nil), g.Players...),
		Hands:     make(map[string][]Card, len(g.Hands)),
		DeckSize:  len(g.Deck),
		Discards:  append([]Card{}, g.Discards...),
		Played:    append([]Card{}, g.Played...),
		Knowledge: g.Knowledge,
		Lives:     g.Lives,
		GameOver:  g.GameOver,
		Won:       g.Completed(),
	}

	for p, hand := range g.Hands {
		if viewer != nil && p == *viewer {
			continue
		}
		v.Hands[p] = append([]Card{}, hand...)
	}
	if viewer == nil {
		v.Deck = append([]Card{}, g.Deck...)
	}
	return v, nil
}
