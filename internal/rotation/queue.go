package rotation

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// MaintainQueue builds up to target upcoming matches from resting players. When
// fewer than target*4 are resting, the shortfall is borrowed from playing players,
// most games played first, and the matches holding them are marked provisional.
// A short or empty queue is a valid result.
func (e *Engine) MaintainQueue(resting, playing []string, courtCount int, weights []PreferenceWeight, roster Roster, target int) []Match {
	queue := []Match{}
	if target <= 0 {
		target = DefaultQueueTarget
	}
	if courtCount <= 0 {
		return queue
	}

	resting = lo.Uniq(resting)
	candidates := e.prioritise(resting, roster)

	borrowed := map[string]bool{}
	if short := target*4 - len(candidates); short > 0 && len(playing) > 0 {
		extra := borrowOrder(lo.Without(lo.Uniq(playing), resting...), roster)
		for _, id := range extra[:min(short, len(extra))] {
			borrowed[id] = true
			candidates = append(candidates, id)
		}
	}

	used := map[string]bool{}
	for len(queue) < target {
		free := lo.Filter(candidates, func(id string, _ int) bool {
			return !used[id]
		})
		if len(free) < 4 {
			break
		}
		group := mostDiverseGroup(free, roster)
		m, _ := e.BestSplit(group, weights, roster)
		for _, id := range group {
			used[id] = true
			if borrowed[id] {
				m.Borrowed = append(m.Borrowed, id)
				m.Provisional = true
			}
		}
		queue = append(queue, m)
	}

	log.Debug("Built queue", "matches", len(queue), "candidates", len(candidates), "borrowed", len(borrowed))
	return queue
}

// borrowOrder ranks playing players by who is due to rotate out soonest.
func borrowOrder(ids []string, roster Roster) []string {
	ordered := append([]string(nil), ids...)
	sort.SliceStable(ordered, func(i, j int) bool {
		gi, gj := roster.gamesPlayed(ordered[i]), roster.gamesPlayed(ordered[j])
		if gi != gj {
			return gi > gj
		}
		return roster.restRounds(ordered[i]) < roster.restRounds(ordered[j])
	})
	return ordered
}

// mostDiverseGroup picks the four candidates with the best diversity score.
// Ties go to the earliest combination, so priority order breaks them.
func mostDiverseGroup(candidates []string, roster Roster) []string {
	var best []string
	bestScore := math.Inf(-1)
	for _, combo := range combinations(len(candidates), 4) {
		group := []string{candidates[combo[0]], candidates[combo[1]], candidates[combo[2]], candidates[combo[3]]}
		if score := diversityScore(group, roster); score > bestScore {
			best = group
			bestScore = score
		}
	}
	return best
}

// diversityScore rates who should queue together, before any team split is chosen.
func diversityScore(group []string, roster Roster) float64 {
	var teammateRepeats, opponentRepeats, rest int
	games := make([]float64, 0, len(group))
	for i, a := range group {
		games = append(games, float64(roster.gamesPlayed(a)))
		rest += roster.restRounds(a)
		for _, b := range group[i+1:] {
			teammateRepeats += roster.teammateCount(a, b)
			opponentRepeats += roster.opponentCount(a, b)
		}
	}
	fairness := math.Max(0, 10-stdDev(games))
	return -2*float64(teammateRepeats) - float64(opponentRepeats) + fairness + 0.5*float64(rest)/float64(len(group))
}

// MaintainQueueSize keeps the still valid queue entries of a session, tops the
// queue up to the session's target and re-derives every player's status.
func (e *Engine) MaintainQueueSize(s Session) Session {
	s = s.Clone()
	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	return s
}

// RegenerateQueue discards the session's queue and builds a fresh one.
func (e *Engine) RegenerateQueue(s Session) Session {
	s = s.Clone()
	s.Queue = nil
	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	return s
}

func (e *Engine) topUpQueue(s *Session) {
	roster := NewRoster(s.Players)
	target := s.Settings.queueTarget()
	onCourt := courtPlayers(s.Courts)

	kept := make([]Match, 0, len(s.Queue))
	seen := map[string]bool{}
	for _, m := range s.Queue {
		if len(kept) == target {
			break
		}
		if entry, ok := revalidate(m, roster, onCourt, seen); ok {
			kept = append(kept, entry)
			for _, id := range entry.PlayerIDs() {
				seen[id] = true
			}
		}
	}
	if dropped := len(s.Queue) - len(kept); dropped > 0 {
		log.Debug("Dropped stale queue entries", "session", s.ID, "dropped", dropped)
	}

	if missing := target - len(kept); missing > 0 {
		var resting, playing []string
		for _, p := range s.Players {
			if !p.Active() || seen[p.ID] {
				continue
			}
			if onCourt[p.ID] {
				playing = append(playing, p.ID)
			} else {
				resting = append(resting, p.ID)
			}
		}
		kept = append(kept, e.MaintainQueue(resting, playing, len(s.Courts), s.Weights, roster, missing)...)
	}
	s.Queue = kept
}

// revalidate checks that a queue entry can still be played and refreshes which
// of its players are borrowed from a court.
func revalidate(m Match, roster Roster, onCourt, seen map[string]bool) (Match, bool) {
	ids := m.PlayerIDs()
	if len(lo.Uniq(ids)) != 4 {
		return Match{}, false
	}
	wasBorrowed := lo.Associate(m.Borrowed, func(id string) (string, bool) { return id, true })
	var borrowed []string
	for _, id := range ids {
		p, ok := roster[id]
		if !ok || !p.Active() || seen[id] {
			return Match{}, false
		}
		if onCourt[id] {
			if !wasBorrowed[id] {
				return Match{}, false
			}
			borrowed = append(borrowed, id)
		}
	}
	m = m.clone()
	m.Borrowed = borrowed
	m.Provisional = len(borrowed) > 0
	return m, true
}

func courtPlayers(courts []Court) map[string]bool {
	ids := map[string]bool{}
	for _, c := range courts {
		if c.Match == nil {
			continue
		}
		for _, id := range c.Match.PlayerIDs() {
			ids[id] = true
		}
	}
	return ids
}
