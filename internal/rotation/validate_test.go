package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAssignment(t *testing.T) {
	court := func(n int, m *Match) Court {
		status := CourtEmpty
		if m != nil {
			status = CourtPlaying
		}
		return Court{Number: n, Status: status, Match: m}
	}
	match := func(a, b, c, d string) *Match {
		return &Match{Team1: Team{a, b}, Team2: Team{c, d}}
	}

	tests := []struct {
		name       string
		assignment Assignment
		valid      bool
		duplicates []string
		errors     int
	}{
		{
			name: "clean assignment",
			assignment: Assignment{
				Courts:  []Court{court(1, match("a", "b", "c", "d")), court(2, nil)},
				Queue:   []Match{*match("e", "f", "g", "h")},
				Waiting: []string{"i"},
			},
			valid: true,
		},
		{
			name: "player on a court and in the queue",
			assignment: Assignment{
				Courts: []Court{court(1, match("a", "b", "c", "d"))},
				Queue:  []Match{*match("a", "f", "g", "h")},
			},
			duplicates: []string{"a"},
			errors:     1,
		},
		{
			name: "player on two courts",
			assignment: Assignment{
				Courts: []Court{court(1, match("a", "b", "c", "d")), court(2, match("e", "f", "g", "b"))},
			},
			duplicates: []string{"b"},
			errors:     1,
		},
		{
			name: "waiting player also placed",
			assignment: Assignment{
				Courts:  []Court{court(1, match("a", "b", "c", "d"))},
				Waiting: []string{"d"},
			},
			errors: 1,
		},
		{
			name: "player repeated inside a match",
			assignment: Assignment{
				Courts: []Court{court(1, match("a", "a", "c", "d"))},
			},
			duplicates: []string{"a"},
			errors:     2,
		},
		{
			name: "empty slot",
			assignment: Assignment{
				Courts: []Court{court(1, match("a", "", "c", "d"))},
			},
			errors: 1,
		},
		{
			name: "court marked playing without a match",
			assignment: Assignment{
				Courts: []Court{{Number: 1, Status: CourtPlaying}},
			},
			errors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAssignment(tt.assignment)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Len(t, got.Errors, tt.errors, got.Errors)
			if tt.duplicates == nil {
				assert.Empty(t, got.Duplicates)
			} else {
				assert.Equal(t, tt.duplicates, got.Duplicates)
			}
			assert.NotNil(t, got.Errors)
			assert.NotNil(t, got.Duplicates)
		})
	}
}

func TestValidateSessionIntegrity(t *testing.T) {
	base := func() Session {
		e := New(WithSeed(12), WithClock(fixedClock))
		return e.StartRound(newSession(newPlayers(12), 2))
	}

	t.Run("fresh round is valid", func(t *testing.T) {
		got := ValidateSessionIntegrity(base())
		assert.True(t, got.IsValid, got.Errors)
	})

	t.Run("borrowed players in a provisional entry are allowed", func(t *testing.T) {
		s := New(WithSeed(12)).MaintainQueueSize(base())
		require.True(t, s.Queue[len(s.Queue)-1].Provisional)
		got := ValidateSessionIntegrity(s)
		assert.True(t, got.IsValid, got.Errors)
	})

	tests := []struct {
		name   string
		mutate func(s *Session)
		dup    bool
	}{
		{
			name: "asymmetric teammate history",
			mutate: func(s *Session) {
				s.Players[0].Teammates[s.Players[1].ID] = 3
			},
		},
		{
			name: "stale status",
			mutate: func(s *Session) {
				for i := range s.Players {
					if s.Players[i].Status == StatusPlaying {
						s.Players[i].Status = StatusResting
						return
					}
				}
			},
		},
		{
			name: "left player still on court",
			mutate: func(s *Session) {
				id := s.Courts[0].Match.Team1[0]
				at := time.Now()
				p := s.Player(id)
				p.HasLeft, p.LeftAt, p.Status = true, &at, StatusAway
			},
		},
		{
			name: "left player without leave time",
			mutate: func(s *Session) {
				for i := range s.Players {
					if s.Players[i].Status == StatusResting || s.Players[i].Status == StatusQueued {
						s.Players[i].HasLeft = true
						return
					}
				}
				s.Players = append(s.Players, Player{ID: "late", HasLeft: true, Status: StatusAway})
			},
		},
		{
			name: "unknown player on a court",
			mutate: func(s *Session) {
				s.Courts[0].Match.Team2[1] = "ghost"
			},
		},
		{
			name: "player queued while on court without being borrowed",
			mutate: func(s *Session) {
				s.Queue[0].Team1[0] = s.Courts[0].Match.Team1[0]
			},
			dup: true,
		},
		{
			name: "provisional flag without borrowed players",
			mutate: func(s *Session) {
				s.Queue[0].Provisional = true
			},
		},
		{
			name: "court status disagrees with its match",
			mutate: func(s *Session) {
				s.Courts[1].Status = CourtEmpty
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			got := ValidateSessionIntegrity(s)
			assert.False(t, got.IsValid)
			assert.NotEmpty(t, got.Errors)
			if tt.dup {
				assert.NotEmpty(t, got.Duplicates)
			}
		})
	}
}
