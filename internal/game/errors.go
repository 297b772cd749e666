// internal/game/errors.go
package game

import "errors"

// Error kinds surfaced by the engine. Callers classify with errors.Is; the
// wrapped message carries the offending value (index, player name, etc.).
var (
	// ErrInvalidPlayerCount rejects game creation outside 2-5 unique players.
	ErrInvalidPlayerCount = errors.New("invalid player count")

	// ErrUnknownGame means no record exists for the requested game id.
	ErrUnknownGame = errors.New("unknown game")

	// ErrUnknownPlayer means the named player is not part of this game.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrInvalidCardIndex rejects a play or discard addressing a hand slot
	// that does not exist.
	ErrInvalidCardIndex = errors.New("invalid card index")

	// ErrAmbiguousHintCriterion rejects hints that supply neither or both of
	// colour and rank.
	ErrAmbiguousHintCriterion = errors.New("ambiguous hint criterion")

	// ErrGameOver rejects plays and discards once the game has been lost.
	// The refused call leaves the record untouched.
	ErrGameOver = errors.New("game over")

	// ErrBusy means the game's exclusive lock could not be acquired within
	// the bounded wait. No mutation occurred; the caller may retry.
	ErrBusy = errors.New("game busy")
)
