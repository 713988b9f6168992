package rotation

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// StartRound reassigns every court and the queue from the session's roster.
// Matches in progress are replaced wholesale. When the resting players cannot
// fill the queue, it is topped up with provisional entries borrowing from courts.
func (e *Engine) StartRound(s Session) Session {
	s = s.Clone()
	courtCount := s.Settings.CourtCount
	if courtCount == 0 {
		courtCount = len(s.Courts)
	}
	a := e.generate(s.Players, courtCount, s.Weights, s.Settings.queueTarget())

	names := lo.Associate(s.Courts, func(c Court) (int, string) { return c.Number, c.Name })
	for i := range a.Courts {
		a.Courts[i].Name = names[a.Courts[i].Number]
	}
	s.Courts = a.Courts
	s.Queue = a.Queue
	s.Round++
	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	log.Info("Started round", "session", s.ID, "round", s.Round, "courts_filled", a.Quality.CourtsFilled, "queue", len(s.Queue), "waiting", len(a.Waiting))
	return s
}

// CompleteMatch records the result of the match on court, frees the court and
// fills it from the front of the queue. If no queued match is ready, the four
// highest priority free players are put on instead.
func (e *Engine) CompleteMatch(s Session, court int) (Session, error) {
	s = s.Clone()
	idx, ok := courtIndex(s.Courts, court)
	if !ok {
		return s, fmt.Errorf("court %d: %w", court, ErrCourtNotFound)
	}
	if s.Courts[idx].Match == nil {
		return s, fmt.Errorf("court %d: %w", court, ErrCourtEmpty)
	}

	finished := *s.Courts[idx].Match
	RecordCompletion(s.Players, finished)
	s.Courts[idx].Match = nil

	if next, ok := e.nextMatch(&s); ok {
		startedAt := e.now()
		next.Court = court
		next.StartedAt = &startedAt
		s.Courts[idx].Match = &next
	}

	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	log.Info("Completed match", "session", s.ID, "court", court, "refilled", s.Courts[idx].Match != nil)
	return s, nil
}

// nextMatch pops the first queue entry whose players are all free, falling back
// to a fresh match from the free players.
func (e *Engine) nextMatch(s *Session) (Match, bool) {
	roster := NewRoster(s.Players)
	onCourt := courtPlayers(s.Courts)
	for i, m := range s.Queue {
		ready := lo.EveryBy(m.PlayerIDs(), func(id string) bool {
			p, ok := roster[id]
			return ok && p.Active() && !onCourt[id]
		})
		if !ready {
			continue
		}
		s.Queue = append(s.Queue[:i:i], s.Queue[i+1:]...)
		m.Provisional = false
		m.Borrowed = nil
		return m, true
	}

	free := e.prioritise(freePlayers(s, onCourt), roster)
	if len(free) < 4 {
		return Match{}, false
	}
	return e.BestSplit(free[:4], s.Weights, roster)
}

// AddPlayer adds a player who joined mid-session, or brings back one who left.
// Newcomers start at the lowest games count among active players so they are
// neither starved nor pushed onto every court until they catch up.
func (e *Engine) AddPlayer(s Session, p Player) Session {
	s = s.Clone()
	if existing := s.Player(p.ID); existing != nil {
		existing.HasLeft = false
		existing.LeftAt = nil
		existing.LeftReason = ""
		existing.Away = false
		log.Info("Player rejoined", "session", s.ID, "player", p.ID)
	} else {
		active := lo.Filter(s.Players, func(q Player, _ int) bool { return q.Active() })
		if len(active) > 0 {
			floor := lo.MinBy(active, func(a, b Player) bool { return a.GamesPlayed < b.GamesPlayed }).GamesPlayed
			p.GamesPlayed = max(p.GamesPlayed, floor)
		}
		p.RestRounds = 0
		p.HasLeft = false
		p.Away = false
		if p.Teammates == nil {
			p.Teammates = map[string]int{}
		}
		if p.Opponents == nil {
			p.Opponents = map[string]int{}
		}
		s.Players = append(s.Players, p)
		log.Info("Player joined", "session", s.ID, "player", p.ID, "games_played", p.GamesPlayed)
	}

	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	return s
}

// RemovePlayer marks a player as left. Their history stays for scoring the
// others. A player leaving mid-match is replaced by the highest priority free
// player, or the court is emptied if nobody is free.
func (e *Engine) RemovePlayer(s Session, id, reason string, at time.Time) (Session, error) {
	s = s.Clone()
	p := s.Player(id)
	if p == nil {
		return s, fmt.Errorf("player %s: %w", id, ErrPlayerNotFound)
	}
	p.HasLeft = true
	p.LeftAt = &at
	p.LeftReason = reason

	e.vacate(&s, id)
	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	log.Info("Player left", "session", s.ID, "player", id, "reason", reason)
	return s, nil
}

// SetAway pauses or resumes a player without removing them from the session.
func (e *Engine) SetAway(s Session, id string, away bool) (Session, error) {
	s = s.Clone()
	p := s.Player(id)
	if p == nil {
		return s, fmt.Errorf("player %s: %w", id, ErrPlayerNotFound)
	}
	p.Away = away
	if away {
		e.vacate(&s, id)
	}
	e.topUpQueue(&s)
	ApplyStatuses(&s)
	s.UpdatedAt = e.now()
	log.Info("Player availability changed", "session", s.ID, "player", id, "away", away)
	return s, nil
}

// vacate takes id off whichever court they are on.
func (e *Engine) vacate(s *Session, id string) {
	for i := range s.Courts {
		m := s.Courts[i].Match
		if m == nil || !m.Contains(id) {
			continue
		}
		onCourt := courtPlayers(s.Courts)
		queued := map[string]bool{}
		for _, q := range s.Queue {
			for _, qid := range q.PlayerIDs() {
				queued[qid] = true
			}
		}
		free := e.prioritise(freePlayers(s, onCourt), NewRoster(s.Players))
		// Prefer someone who is not already lined up in the queue.
		free = append(lo.Filter(free, func(f string, _ int) bool { return !queued[f] }),
			lo.Filter(free, func(f string, _ int) bool { return queued[f] })...)
		if len(free) == 0 {
			log.Info("No substitute available, emptying court", "session", s.ID, "court", s.Courts[i].Number)
			s.Courts[i].Match = nil
			return
		}
		replaced := *m
		for _, team := range []*Team{&replaced.Team1, &replaced.Team2} {
			for j := range team {
				if team[j] == id {
					team[j] = free[0]
				}
			}
		}
		s.Courts[i].Match = &replaced
		log.Info("Substituted player on court", "session", s.ID, "court", s.Courts[i].Number, "out", id, "in", free[0])
		return
	}
}

func freePlayers(s *Session, onCourt map[string]bool) []string {
	return lo.FilterMap(s.Players, func(p Player, _ int) (string, bool) {
		return p.ID, p.Active() && !onCourt[p.ID]
	})
}

func courtIndex(courts []Court, number int) (int, bool) {
	_, idx, ok := lo.FindIndexOf(courts, func(c Court) bool { return c.Number == number })
	return idx, ok
}
