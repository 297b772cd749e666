// internal/game/game.go
package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Game is the authoritative record for one table. It is the unit persisted
// by the store; field names are stable because external tooling inspects
// stored games. Every card lives in exactly one of hands/deck/discards/played
// at all times.
//
// The record itself carries no lock. Callers (the service layer) serialize
// all mutations per game id and hand each mutation a freshly loaded record.
type Game struct {
	ID      uuid.UUID         `json:"id"`
	Players []string          `json:"players"`
	Hands   map[string][]Card `json:"hands"`

	// Deck is the draw pile; the back of the slice is the next card drawn.
	Deck     []Card `json:"deck"`
	Discards []Card `json:"discards"`

	// Played holds every successfully played card in order. Per-colour
	// stacks are reconstructed by filtering, the same way the original
	// client renders its piles.
	Played []Card `json:"played"`

	// Knowledge tracks hint tokens, Lives the mistake budget. used+available
	// stays constant for the life of the game.
	Knowledge Counters `json:"knowledge"`
	Lives     Counters `json:"lives"`

	// Log is append-only. Entries before the sentinel (the setup detail,
	// including the full deck order) are private to the operator; entries
	// after it are visible to every player.
	Log []string `json:"log"`

	GameOver bool `json:"game_over"`

	Rules Rules `json:"rules"`
}

// Counters is a used/available pair whose sum never changes.
type Counters struct {
	Used      int `json:"used"`
	Available int `json:"available"`
}

// PlayResult reports the outcome of a single play action.
type PlayResult struct {
	Played   bool `json:"played"`
	GameOver bool `json:"game_over"`
}

// NewGame builds a fresh record: validates the roster, builds and deranges
// the deck, deals each player's hand from the deck tail in player order, and
// seeds the log with the private deck order followed by the public sentinel.
func NewGame(players []string, rules Rules) (*Game, error) {
	if len(players) < 2 || len(players) > 5 {
		return nil, fmt.Errorf("%w: got %d players, need 2-5", ErrInvalidPlayerCount, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p == "" {
			return nil, fmt.Errorf("%w: empty player name", ErrInvalidPlayerCount)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: duplicate player %q", ErrInvalidPlayerCount, p)
		}
		seen[p] = true
	}

	g := &Game{
		ID:        uuid.New(),
		Players:   append([]string(nil), players...),
		Hands:     make(map[string][]Card, len(players)),
		Deck:      Derange(BuildDeck(rules)),
		Discards:  []Card{},
		Played:    []Card{},
		Knowledge: Counters{Used: 0, Available: rules.HintBudget},
		Lives:     Counters{Used: 0, Available: rules.LifeBudget},
		Rules:     rules,
	}

	handSize := rules.HandSize(len(players))
	for _, p := range g.Players {
		hand := make([]Card, 0, handSize)
		for i := 0; i < handSize; i++ {
			card, ok := g.drawCard()
			if !ok {
				break
			}
			hand = append(hand, card)
		}
		g.Hands[p] = hand
	}

	g.appendLog("game %s created with players %s", g.ID, strings.Join(g.Players, ", "))
	g.appendLog("deck order (next draw last): %s", cardList(g.Deck))
	g.Log = append(g.Log, LogSentinel)
	g.appendLog("hands dealt, %d cards each, %d left in the deck", handSize, len(g.Deck))

	return g, nil
}

// CanPlay reports whether the candidate extends its colour's stack: legal
// iff its rank is exactly one above the highest rank already played in that
// colour (zero when the colour is untouched). Colours are independent.
func (g *Game) CanPlay(candidate Card) bool {
	return candidate.Rank == g.topPlayed(candidate.Colour)+1
}

// topPlayed returns the highest played rank of the colour, 0 if none.
func (g *Game) topPlayed(colour Colour) int {
	top := 0
	for _, c := range g.Played {
		if c.Colour == colour && c.Rank > top {
			top = c.Rank
		}
	}
	return top
}

// ApplyPlay removes the indexed card from the player's hand and resolves it.
// A legal card joins the played stacks, refunding one hint when it completes
// a colour (rank 5) and hints have been spent. An illegal card is discarded
// and costs a life; losing the last life ends the game immediately with no
// replacement draw. On every non-terminal outcome the vacated slot is
// refilled from the deck tail while cards remain.
func (g *Game) ApplyPlay(player string, cardIndex int) (PlayResult, error) {
	if g.GameOver {
		return PlayResult{GameOver: true}, fmt.Errorf("%w: no further plays accepted", ErrGameOver)
	}
	card, err := g.removeFromHand(player, cardIndex)
	if err != nil {
		return PlayResult{}, err
	}

	if g.CanPlay(card) {
		g.Played = append(g.Played, card)
		if card.Rank == g.Rules.TopRank() && g.Knowledge.Used > 0 {
			g.Knowledge.Used--
			g.Knowledge.Available++
			g.appendLog("%s played %s, completing %s and recovering a hint", player, card, card.Colour)
		} else {
			g.appendLog("%s played %s", player, card)
		}
		g.refillHand(player)
		return PlayResult{Played: true}, nil
	}

	g.Discards = append(g.Discards, card)
	if g.Lives.Available > 0 {
		g.Lives.Used++
		g.Lives.Available--
	}
	if g.Lives.Available <= 0 {
		g.GameOver = true
		g.appendLog("%s misplayed %s; no lives remain, the game is lost", player, card)
		return PlayResult{Played: false, GameOver: true}, nil
	}
	g.appendLog("%s misplayed %s, %d lives remain", player, card, g.Lives.Available)
	g.refillHand(player)
	return PlayResult{Played: false}, nil
}

// ApplyDiscard moves the indexed card to the discard pile, recovers one hint
// if any have been spent, and refills the hand from the deck.
func (g *Game) ApplyDiscard(player string, cardIndex int) error {
	if g.GameOver {
		return fmt.Errorf("%w: no further discards accepted", ErrGameOver)
	}
	card, err := g.removeFromHand(player, cardIndex)
	if err != nil {
		return err
	}

	g.Discards = append(g.Discards, card)
	if g.Knowledge.Used > 0 {
		g.Knowledge.Used--
		g.Knowledge.Available++
		g.appendLog("%s discarded %s, recovering a hint", player, card)
	} else {
		g.appendLog("%s discarded %s", player, card)
	}
	g.refillHand(player)
	return nil
}

// ApplyHint answers a hint from requester to recipient about exactly one of
// colour or rank, returning the matching positions in the recipient's hand
// (possibly empty) and recording the hint in the public log.
//
// Giving a hint does not spend a hint token. The knowledge counters move
// only on discards and completed colours; see StandardRules.
func (g *Game) ApplyHint(requester, recipient string, colour *Colour, rank *int) ([]int, error) {
	if !g.hasPlayer(requester) {
		return nil, fmt.Errorf("%w: %q is not in this game", ErrUnknownPlayer, requester)
	}
	hand, ok := g.Hands[recipient]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not in this game", ErrUnknownPlayer, recipient)
	}
	if (colour == nil) == (rank == nil) {
		return nil, fmt.Errorf("%w: supply exactly one of colour or rank", ErrAmbiguousHintCriterion)
	}

	positions := []int{}
	for i, c := range hand {
		if colour != nil && c.Colour == *colour {
			positions = append(positions, i)
		}
		if rank != nil && c.Rank == *rank {
			positions = append(positions, i)
		}
	}

	if colour != nil {
		g.appendLog("%s told %s about %s cards: positions %v", requester, recipient, *colour, positions)
	} else {
		g.appendLog("%s told %s about rank %d cards: positions %v", requester, recipient, *rank, positions)
	}
	return positions, nil
}

// Completed reports the derived win: every colour played up to the top rank.
func (g *Game) Completed() bool {
	for _, colour := range g.Rules.Palette {
		if g.topPlayed(colour) < g.Rules.TopRank() {
			return false
		}
	}
	return true
}

// CardCount totals the cards across hands, deck, discards and played. It is
// invariant for the life of a game and equals the rules' deck size.
func (g *Game) CardCount() int {
	n := len(g.Deck) + len(g.Discards) + len(g.Played)
	for _, hand := range g.Hands {
		n += len(hand)
	}
	return n
}

// Clone returns an independent deep copy of the record. Stores hand out
// clones so readers always observe a consistent snapshot.
func (g *Game) Clone() *Game {
	out := *g
	out.Players = append([]string(nil), g.Players...)
	out.Deck = append([]Card{}, g.Deck...)
	out.Discards = append([]Card{}, g.Discards...)
	out.Played = append([]Card{}, g.Played...)
	out.Log = append([]string(nil), g.Log...)
	out.Hands = make(map[string][]Card, len(g.Hands))
	for p, hand := range g.Hands {
		out.Hands[p] = append([]Card{}, hand...)
	}
	out.Rules.Palette = append([]Colour(nil), g.Rules.Palette...)
	out.Rules.RankCounts = append([]int(nil), g.Rules.RankCounts...)
	return &out
}

func (g *Game) hasPlayer(player string) bool {
	_, ok := g.Hands[player]
	return ok
}

// removeFromHand validates the actor and index, then extracts the card while
// preserving hand order. All validation failures leave the record untouched.
func (g *Game) removeFromHand(player string, cardIndex int) (Card, error) {
	hand, ok := g.Hands[player]
	if !ok {
		return Card{}, fmt.Errorf("%w: %q is not in this game", ErrUnknownPlayer, player)
	}
	if cardIndex < 0 || cardIndex >= len(hand) {
		return Card{}, fmt.Errorf("%w: index %d out of range for hand of %d", ErrInvalidCardIndex, cardIndex, len(hand))
	}
	card := hand[cardIndex]
	g.Hands[player] = append(hand[:cardIndex:cardIndex], hand[cardIndex+1:]...)
	return card, nil
}

// drawCard pops the next card off the deck tail.
func (g *Game) drawCard() (Card, bool) {
	if len(g.Deck) == 0 {
		return Card{}, false
	}
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card, true
}

// refillHand draws one replacement into the player's hand if the deck has
// cards left; hands shrink once it runs dry.
func (g *Game) refillHand(player string) {
	if card, ok := g.drawCard(); ok {
		g.Hands[player] = append(g.Hands[player], card)
	}
}

func (g *Game) appendLog(format string, args ...interface{}) {
	g.Log = append(g.Log, fmt.Sprintf(format, args...))
}

func cardList(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
