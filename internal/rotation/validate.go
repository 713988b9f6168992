package rotation

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// ValidateAssignment reports duplicate placements and malformed matches in an
// assignment. It is meant for tests and debugging, not control flow.
func ValidateAssignment(a Assignment) ValidationResult {
	var v validator
	placements := map[string]int{}

	courtNumbers := map[int]bool{}
	for _, c := range a.Courts {
		if courtNumbers[c.Number] {
			v.errorf("court %d appears more than once", c.Number)
		}
		courtNumbers[c.Number] = true
		v.checkCourtState(c)
		if c.Match == nil {
			continue
		}
		v.checkMatch(fmt.Sprintf("court %d", c.Number), *c.Match)
		for _, id := range c.Match.PlayerIDs() {
			placements[id]++
		}
	}
	for i, m := range a.Queue {
		v.checkMatch(fmt.Sprintf("queue entry %d", i+1), m)
		for _, id := range m.PlayerIDs() {
			placements[id]++
		}
	}
	for _, id := range lo.Uniq(a.Waiting) {
		if placements[id] > 0 {
			v.errorf("player %s is waiting but also placed", id)
		}
	}
	if dups := lo.FindDuplicates(a.Waiting); len(dups) > 0 {
		v.errorf("waiting list repeats players: %v", dups)
	}

	v.collectDuplicates(placements)
	return v.result()
}

// ValidateSessionIntegrity checks a full session snapshot: every id placed
// at most once, placements reference known active players, court and player
// statuses agree with placements, and interaction history is symmetric.
func ValidateSessionIntegrity(s Session) ValidationResult {
	var v validator

	roster := Roster{}
	for i := range s.Players {
		p := &s.Players[i]
		if _, ok := roster[p.ID]; ok {
			v.errorf("player %s appears more than once in the roster", p.ID)
		}
		roster[p.ID] = p
		if p.GamesPlayed < 0 || p.RestRounds < 0 {
			v.errorf("player %s has negative counters", p.ID)
		}
		if p.HasLeft && p.LeftAt == nil {
			v.errorf("player %s has left without a leave time", p.ID)
		}
	}

	placements := map[string]int{}
	onCourt := map[string]bool{}
	courtNumbers := map[int]bool{}
	for _, c := range s.Courts {
		if courtNumbers[c.Number] {
			v.errorf("court %d appears more than once", c.Number)
		}
		courtNumbers[c.Number] = true
		v.checkCourtState(c)
		if c.Match == nil {
			continue
		}
		where := fmt.Sprintf("court %d", c.Number)
		v.checkMatch(where, *c.Match)
		for _, id := range c.Match.PlayerIDs() {
			placements[id]++
			onCourt[id] = true
			v.checkPlaced(where, id, roster)
		}
	}
	for i, m := range s.Queue {
		where := fmt.Sprintf("queue entry %d", i+1)
		v.checkMatch(where, m)
		for _, id := range m.PlayerIDs() {
			v.checkPlaced(where, id, roster)
			if onCourt[id] && lo.Contains(m.Borrowed, id) {
				continue
			}
			placements[id]++
		}
		if m.Provisional != (len(m.Borrowed) > 0) {
			v.errorf("%s provisional flag disagrees with its borrowed players", where)
		}
	}
	v.collectDuplicates(placements)

	for _, p := range s.Players {
		if want := DeriveStatus(p, s.Courts, s.Queue); p.Status != want {
			v.errorf("player %s has status %q but placement implies %q", p.ID, p.Status, want)
		}
		for other, n := range p.Teammates {
			if q, ok := roster[other]; ok && q.Teammates[p.ID] != n {
				v.errorf("teammate history between %s and %s is asymmetric", p.ID, other)
			}
		}
		for other, n := range p.Opponents {
			if q, ok := roster[other]; ok && q.Opponents[p.ID] != n {
				v.errorf("opponent history between %s and %s is asymmetric", p.ID, other)
			}
		}
	}
	return v.result()
}

type validator struct {
	errors     []string
	duplicates []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) checkCourtState(c Court) {
	switch {
	case c.Match == nil && c.Status == CourtPlaying:
		v.errorf("court %d is marked playing without a match", c.Number)
	case c.Match != nil && c.Status != CourtPlaying:
		v.errorf("court %d has a match but is marked %q", c.Number, c.Status)
	}
}

func (v *validator) checkMatch(where string, m Match) {
	ids := m.PlayerIDs()
	if lo.Contains(ids, "") {
		v.errorf("%s has an empty player slot", where)
	}
	if len(lo.Uniq(ids)) != len(ids) {
		v.errorf("%s repeats a player: %v", where, ids)
	}
}

func (v *validator) checkPlaced(where, id string, roster Roster) {
	p, ok := roster[id]
	switch {
	case !ok:
		v.errorf("%s references unknown player %s", where, id)
	case p.HasLeft:
		v.errorf("%s includes player %s who has left", where, id)
	case p.Away:
		v.errorf("%s includes player %s who is away", where, id)
	}
}

func (v *validator) collectDuplicates(placements map[string]int) {
	for id, n := range placements {
		if n > 1 {
			v.duplicates = append(v.duplicates, id)
		}
	}
	sort.Strings(v.duplicates)
	for _, id := range v.duplicates {
		v.errorf("player %s is placed %d times", id, placements[id])
	}
}

func (v *validator) result() ValidationResult {
	return ValidationResult{
		IsValid:    len(v.errors) == 0,
		Errors:     lo.Ternary(v.errors == nil, []string{}, v.errors),
		Duplicates: lo.Ternary(v.duplicates == nil, []string{}, v.duplicates),
	}
}
