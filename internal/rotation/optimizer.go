package rotation

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// GenerateOptimalTeams assigns the highest priority players to courts, builds the
// lookahead queue from the rest and reports who is left waiting. Players who left
// or are away are never placed. It never fails: too few players simply means
// everybody waits.
func (e *Engine) GenerateOptimalTeams(players []Player, courtCount int, weights []PreferenceWeight) Assignment {
	return e.generate(players, courtCount, weights, DefaultQueueTarget)
}

func (e *Engine) generate(players []Player, courtCount int, weights []PreferenceWeight, queueTarget int) Assignment {
	if courtCount < 0 {
		courtCount = 0
	}
	roster := NewRoster(players)
	courts := emptyCourts(courtCount)

	eligible := lo.FilterMap(players, func(p Player, _ int) (string, bool) {
		return p.ID, p.Active()
	})
	if len(eligible) < 4 {
		log.Debug("Not enough players for a match", "eligible", len(eligible))
		return Assignment{
			Courts:  courts,
			Queue:   []Match{},
			Waiting: eligible,
			Quality: quality(nil, eligible, roster),
		}
	}

	ordered := e.prioritise(eligible, roster)
	groups := min(courtCount, len(ordered)/4)
	pool := ordered[:groups*4]
	rest := ordered[groups*4:]

	matches := e.partition(pool, weights, roster)
	startedAt := e.now()
	for i := range matches {
		m := matches[i]
		m.Court = courts[i].Number
		m.StartedAt = &startedAt
		courts[i].Match = &m
		courts[i].Status = CourtPlaying
	}

	queue := e.MaintainQueue(rest, nil, courtCount, weights, roster, queueTarget)
	queued := make(map[string]bool, len(queue)*4)
	for _, m := range queue {
		for _, id := range m.PlayerIDs() {
			queued[id] = true
		}
	}
	waiting := lo.Filter(rest, func(id string, _ int) bool {
		return !queued[id]
	})

	log.Debug("Generated assignment", "courts", len(matches), "queue", len(queue), "waiting", len(waiting))
	return Assignment{
		Courts:  courts,
		Queue:   queue,
		Waiting: waiting,
		Quality: quality(matches, eligible, roster),
	}
}

func emptyCourts(n int) []Court {
	courts := make([]Court, n)
	for i := range courts {
		courts[i] = Court{Number: i + 1, Status: CourtEmpty}
	}
	return courts
}

// prioritise orders ids by fewest games, then longest rest, then at random.
func (e *Engine) prioritise(ids []string, roster Roster) []string {
	ordered := append([]string(nil), ids...)
	e.shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := roster.gamesPlayed(ordered[i]), roster.gamesPlayed(ordered[j])
		if gi != gj {
			return gi < gj
		}
		return roster.restRounds(ordered[i]) > roster.restRounds(ordered[j])
	})
	return ordered
}

// partition splits the playing pool into court matches. One court uses the team
// finder directly and two courts search every 4|4 split. Three or more courts
// group consecutively in priority order, which keeps latency bounded at the cost
// of optimality.
func (e *Engine) partition(pool []string, weights []PreferenceWeight, roster Roster) []Match {
	switch len(pool) / 4 {
	case 0:
		return nil
	case 1:
		m, _ := e.BestSplit(pool, weights, roster)
		return []Match{m}
	case 2:
		return e.bestTwoCourtSplit(pool, weights, roster)
	}
	matches := make([]Match, 0, len(pool)/4)
	for _, group := range lo.Chunk(pool, 4) {
		m, _ := e.BestSplit(group, weights, roster)
		matches = append(matches, m)
	}
	return matches
}

// bestTwoCourtSplit tries all 35 ways to divide eight players into two groups
// of four; the first player is pinned to the first group to skip mirror images.
func (e *Engine) bestTwoCourtSplit(pool []string, weights []PreferenceWeight, roster Roster) []Match {
	var best []Match
	bestTotal := 0.0
	for _, combo := range combinations(len(pool)-1, 3) {
		inFirst := map[int]bool{0: true}
		for _, idx := range combo {
			inFirst[idx+1] = true
		}
		var first, second []string
		for i, id := range pool {
			if inFirst[i] {
				first = append(first, id)
			} else {
				second = append(second, id)
			}
		}
		m1, _ := e.BestSplit(first, weights, roster)
		m2, _ := e.BestSplit(second, weights, roster)
		if total := m1.Score + m2.Score; best == nil || total > bestTotal {
			best = []Match{m1, m2}
			bestTotal = total
		}
	}
	return best
}

// combinations returns every k-subset of [0, n) as ascending index slices.
func combinations(n, k int) [][]int {
	if k > n || k < 0 {
		return nil
	}
	var out [][]int
	combo := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}

func quality(matches []Match, eligible []string, roster Roster) Quality {
	q := Quality{
		CourtsFilled:    len(matches),
		EligiblePlayers: len(eligible),
	}
	for _, m := range matches {
		q.TotalScore += m.Score
	}
	if len(matches) > 0 {
		q.AverageScore = q.TotalScore / float64(len(matches))
	}
	if len(eligible) == 0 {
		return q
	}
	games := lo.Map(eligible, func(id string, _ int) float64 {
		return float64(roster.gamesPlayed(id))
	})
	q.GamesPlayedSpread = int(lo.Max(games) - lo.Min(games))
	q.GamesPlayedStdDev = stdDev(games)
	return q
}
