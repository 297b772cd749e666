// internal/game/rules.go
package game

// Rules captures the table configuration for one game: the colour palette,
// how many copies of each rank the deck carries per colour, and the shared
// hint and life budgets. Rule variants (shorter palettes, different budgets)
// are expressed by passing a different value, never by mutating globals.
type Rules struct {
	Palette    []Colour `json:"palette"`
	RankCounts []int    `json:"rank_counts"` // index 0 holds the copy count for rank 1
	HintBudget int      `json:"hint_budget"`
	LifeBudget int      `json:"life_budget"`
}

// StandardRules is the classic five-colour setup: three 1s, two each of
// 2/3/4, one 5 per colour (50 cards), 8 hints, 3 lives.
func StandardRules() Rules {
	return Rules{
		Palette:    []Colour{ColourRed, ColourGreen, ColourWhite, ColourYellow, ColourBlue},
		RankCounts: []int{3, 2, 2, 2, 1},
		HintBudget: 8,
		LifeBudget: 3,
	}
}

// DeckSize returns the total number of cards the rules produce.
func (r Rules) DeckSize() int {
	perColour := 0
	for _, copies := range r.RankCounts {
		perColour += copies
	}
	return perColour * len(r.Palette)
}

// TopRank is the highest rank in the deck; playing it completes a colour.
func (r Rules) TopRank() int {
	return len(r.RankCounts)
}

// HandSize returns how many cards each player is dealt: five in small games,
// four once the table grows to four or five players.
func (r Rules) HandSize(playerCount int) int {
	if playerCount <= 3 {
		return 5
	}
	return 4
}

// InPalette reports whether the colour is part of this game's palette.
func (r Rules) InPalette(colour Colour) bool {
	for _, c := range r.Palette {
		if c == colour {
			return true
		}
	}
	return false
}
