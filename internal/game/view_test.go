// internal/game/view_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectatorViewCarriesEverything(t *testing.T) {
	g, err := NewGame([]string{"alice", "bob", "carol"}, StandardRules())
	require.NoError(t, err)

	view, err := g.View(nil)
	require.NoError(t, err)

	assert.Equal(t, g.ID, view.ID)
	assert.Equal(t, g.Players, view.Players)
	assert.Equal(t, g.Deck, view.Deck)
	assert.Equal(t, len(g.Deck), view.DeckSize)
	assert.Len(t, view.Hands, 3)
	for p, hand := range g.Hands {
		assert.Equal(t, hand, view.Hands[p])
	}
}

func TestPlayerViewHidesOwnHandAndDeck(t *testing.T) {
	g, err := NewGame([]string{"alice", "bob", "carol"}, StandardRules())
	require.NoError(t, err)

	viewer := "alice"
	view, err := g.View(&viewer)
	require.NoError(t, err)

	_, ok := view.Hands["alice"]
	assert.False(t, ok, "viewer's own hand must be absent")
	assert.Nil(t, view.Deck, "deck contents must never reach a player")
	assert.Equal(t, len(g.Deck), view.DeckSize)

	// Everything else matches the unfiltered state.
	assert.Equal(t, g.Hands["bob"], view.Hands["bob"])
	assert.Equal(t, g.Hands["carol"], view.Hands["carol"])
	assert.Equal(t, g.Discards, view.Discards)
	assert.Equal(t, g.Played, view.Played)
	assert.Equal(t, g.Knowledge, view.Knowledge)
	assert.Equal(t, g.Lives, view.Lives)
}

func TestViewRejectsUnknownViewer(t *testing.T) {
	g, err := NewGame([]string{"alice", "bob"}, StandardRules())
	require.NoError(t, err)

	viewer := "mallory"
	_, err = g.View(&viewer)
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestViewIsACopy(t *testing.T) {
	g, err := NewGame([]string{"alice", "bob"}, StandardRules())
	require.NoError(t, err)

	view, err := g.View(nil)
	require.NoError(t, err)

	view.Hands["bob"][0] = Card{Colour: ColourRed, Rank: 5}
	view.Deck[0] = Card{Colour: ColourRed, Rank: 5}
	assert.Equal(t, 50, g.CardCount())
	assert.NotEqual(t, view.Hands["bob"], g.Hands["bob"])
}

func TestHistorySentinelSplitsPrivateAndPublic(t *testing.T) {
	g, err := NewGame([]string{"alice", "bob"}, StandardRules())
	require.NoError(t, err)

	full := g.History(nil)
	require.NotEmpty(t, full)
	assert.Contains(t, full[1], "deck order", "operator history includes setup detail")

	viewer := "alice"
	public := g.History(&viewer)
	for _, line := range public {
		assert.NotContains(t, line, "deck order")
		assert.NotEqual(t, LogSentinel, line)
	}
	assert.Less(t, len(public), len(full))
}

func TestHistoryWithoutSentinelIsEmptyForPlayers(t *testing.T) {
	g := &Game{Log: []string{"no sentinel here", "still none"}}

	viewer := "alice"
	assert.Empty(t, g.History(&viewer))
	assert.Len(t, g.History(nil), 2)
}
