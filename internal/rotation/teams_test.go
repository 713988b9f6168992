package rotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestSplit_WrongPlayerCount(t *testing.T) {
	e := New(WithSeed(1))
	roster := NewRoster(newPlayers(5))
	for _, ids := range [][]string{nil, {"p01"}, {"p01", "p02", "p03"}, {"p01", "p02", "p03", "p04", "p05"}} {
		_, ok := e.BestSplit(ids, nil, roster)
		assert.False(t, ok, "count %d", len(ids))
	}
}

func TestBestSplit_UsesAllFourPlayers(t *testing.T) {
	e := New(WithSeed(1))
	four := []string{"p01", "p02", "p03", "p04"}
	m, ok := e.BestSplit(four, nil, NewRoster(newPlayers(4)))
	require.True(t, ok)
	assert.ElementsMatch(t, four, m.PlayerIDs())
}

func TestBestSplit_Preferences(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(players []Player)
		weights  []PreferenceWeight
		together bool
	}{
		{
			name:     "teammate weight keeps the pair together",
			weights:  []PreferenceWeight{{Player1: "p02", Player2: "p04", Type: WeightTeammate, Strength: 10}},
			together: true,
		},
		{
			name:     "opponent weight puts the pair on opposite sides",
			weights:  []PreferenceWeight{{Player1: "p01", Player2: "p02", Type: WeightOpponent, Strength: 10}},
			together: false,
		},
		{
			name: "frequent partners are split up",
			setup: func(players []Player) {
				players[0].Teammates["p02"], players[1].Teammates["p01"] = 5, 5
			},
			together: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := newPlayers(4)
			if tt.setup != nil {
				tt.setup(players)
			}
			pair := [2]string{"p01", "p02"}
			if len(tt.weights) > 0 {
				pair = [2]string{tt.weights[0].Player1, tt.weights[0].Player2}
			}
			for seed := int64(0); seed < 20; seed++ {
				e := New(WithSeed(seed))
				m, ok := e.BestSplit([]string{"p01", "p02", "p03", "p04"}, tt.weights, NewRoster(players))
				require.True(t, ok)
				assert.Equal(t, tt.together, sameTeam(m, pair[0], pair[1]), "seed %d", seed)
			}
		})
	}
}
