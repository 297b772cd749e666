// internal/game/log.go
package game

// LogSentinel separates the private setup section of the log (deck order and
// other administrative detail, visible only to the operator) from the public
// action section visible to every player.
const LogSentinel = "--- public record ---"

// History returns the log as the viewer may see it: the full log for the
// nil (operator/spectator) viewer, and only the entries after the sentinel
// for a player. A log with no sentinel has an empty public view.
func (g *Game) History(viewer *string) []string {
	if viewer == nil {
		return append([]string{}, g.Log...)
	}
	for i, line := range g.Log {
		if line == LogSentinel {
			return append([]string{}, g.Log[i+1:]...)
		}
	}
	return []string{}
}
