// internal/game/card.go
package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Colour identifies one of the firework colours in the palette.
type Colour string

const (
	ColourRed    Colour = "Red"
	ColourGreen  Colour = "Green"
	ColourWhite  Colour = "White"
	ColourYellow Colour = "Yellow"
	ColourBlue   Colour = "Blue"
)

// Card is an immutable colour/rank pair. Two cards compare equal when both
// attributes match; the deck intentionally contains duplicates.
type Card struct {
	Colour Colour `json:"colour"`
	Rank   int    `json:"rank"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s %d", c.Colour, c.Rank)
}

// BuildDeck constructs the full deck for the given rules in deterministic
// order: colour-major, ranks ascending, duplicates adjacent. Callers shuffle
// afterwards; the deck is rebuilt fresh for every game.
func BuildDeck(rules Rules) []Card {
	deck := make([]Card, 0, rules.DeckSize())
	for _, colour := range rules.Palette {
		for rank, copies := range rules.RankCounts {
			for i := 0; i < copies; i++ {
				deck = append(deck, Card{Colour: colour, Rank: rank + 1})
			}
		}
	}
	return deck
}

// Derange returns a random permutation of cards in which no card occupies
// the index it held in the input. This is deliberately stricter than a plain
// shuffle: the pre-shuffle order is the predictable colour/rank grouping from
// BuildDeck, and no card may stay in that slot. Candidate permutations are
// sampled uniformly and rejected while any fixed point remains, so the
// retry loop terminates quickly for any deck of two or more cards.
func Derange(cards []Card) []Card {
	n := len(cards)
	if n < 2 {
		out := make([]Card, n)
		copy(out, cards)
		return out
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	perm := make([]int, n)
	for {
		for i := range perm {
			perm[i] = i
		}
		r.Shuffle(n, func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})
		if fixedPointFree(perm) {
			break
		}
	}

	out := make([]Card, n)
	for i, p := range perm {
		out[i] = cards[p]
	}
	return out
}

func fixedPointFree(perm []int) bool {
	for i, p := range perm {
		if i == p {
			return false
		}
	}
	return true
}
