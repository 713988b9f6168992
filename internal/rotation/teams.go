package rotation

import (
	"github.com/charmbracelet/log"
)

// BestSplit returns the highest scoring way to split exactly four players into
// two teams. It returns false for any other player count; callers must not do that.
func (e *Engine) BestSplit(four []string, weights []PreferenceWeight, roster Roster) (Match, bool) {
	if len(four) != 4 {
		log.Debug("BestSplit called with wrong player count", "count", len(four))
		return Match{}, false
	}
	a, b, c, d := four[0], four[1], four[2], four[3]
	splits := [3][2]Team{
		{{a, b}, {c, d}},
		{{a, c}, {b, d}},
		{{a, d}, {b, c}},
	}

	var best Match
	found := false
	for _, split := range splits {
		score := e.Score(split[0], split[1], weights, roster)
		if !found || score > best.Score {
			best = Match{Team1: split[0], Team2: split[1], Score: score}
			found = true
		}
	}
	return best, true
}
