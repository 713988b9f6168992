package rotation

import (
	"github.com/charmbracelet/log"
)

// RecordCompletion updates players in place after finished has been played.
// The four players get a game and their rest reset, every other active player
// rests one more round, and teammate/opponent tallies are bumped on both sides
// of each pair.
//
// It is the only writer of interaction history and must be called exactly once
// per completed match. Calling it twice for the same match corrupts the
// repetition penalties for the rest of the session. The caller owns that check.
func RecordCompletion(players []Player, finished Match) {
	roster := NewRoster(players)
	for i := range players {
		p := &players[i]
		switch {
		case finished.Contains(p.ID):
			p.GamesPlayed++
			p.RestRounds = 0
		case p.Active():
			p.RestRounds++
		}
	}

	for _, team := range []Team{finished.Team1, finished.Team2} {
		bump(roster, team[0], team[1], func(p *Player) map[string]int {
			if p.Teammates == nil {
				p.Teammates = map[string]int{}
			}
			return p.Teammates
		})
	}
	for _, a := range finished.Team1 {
		for _, b := range finished.Team2 {
			bump(roster, a, b, func(p *Player) map[string]int {
				if p.Opponents == nil {
					p.Opponents = map[string]int{}
				}
				return p.Opponents
			})
		}
	}
	log.Debug("Recorded match completion", "team1", finished.Team1, "team2", finished.Team2)
}

func bump(roster Roster, a, b string, counts func(*Player) map[string]int) {
	pa, okA := roster[a]
	pb, okB := roster[b]
	if !okA || !okB {
		log.Warn("Skipping history update for unknown player", "a", a, "b", b)
		return
	}
	counts(pa)[b]++
	counts(pb)[a]++
}
