package rotation

import (
	"fmt"
	"math/rand"
	"time"
)

// newPlayers creates n fresh players with ids p01, p02, ...
func newPlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{
			ID:        fmt.Sprintf("p%02d", i+1),
			Name:      fmt.Sprintf("Player %d", i+1),
			Teammates: map[string]int{},
			Opponents: map[string]int{},
		}
	}
	return players
}

// randomRoster creates n players with random but symmetric history.
func randomRoster(rng *rand.Rand, n int) []Player {
	players := newPlayers(n)
	for i := range players {
		players[i].GamesPlayed = rng.Intn(6)
		players[i].RestRounds = rng.Intn(4)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if t := rng.Intn(3); t > 0 {
				players[i].Teammates[players[j].ID] = t
				players[j].Teammates[players[i].ID] = t
			}
			if o := rng.Intn(3); o > 0 {
				players[i].Opponents[players[j].ID] = o
				players[j].Opponents[players[i].ID] = o
			}
		}
	}
	return players
}

func newSession(players []Player, courts int) Session {
	s := Session{
		ID:       "session-1",
		Name:     "Tuesday night",
		Players:  players,
		Courts:   emptyCourts(courts),
		Settings: Settings{CourtCount: courts, QueueTarget: DefaultQueueTarget},
	}
	ApplyStatuses(&s)
	return s
}

func fixedClock() time.Time {
	return time.Date(2025, 7, 9, 19, 0, 0, 0, time.UTC)
}

func placedIDs(a Assignment) []string {
	var ids []string
	for _, c := range a.Courts {
		if c.Match != nil {
			ids = append(ids, c.Match.PlayerIDs()...)
		}
	}
	for _, m := range a.Queue {
		ids = append(ids, m.PlayerIDs()...)
	}
	return ids
}

func sameTeam(m Match, a, b string) bool {
	return (m.Team1.Contains(a) && m.Team1.Contains(b)) || (m.Team2.Contains(a) && m.Team2.Contains(b))
}
