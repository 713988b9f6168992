package session

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/court-rotation/internal/database"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) Store {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return NewStore(db)
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	started := time.Date(2025, 7, 9, 19, 0, 0, 0, time.UTC)

	s := &rotation.Session{
		ID:   "s1",
		Name: "Tuesday night",
		Players: []rotation.Player{
			{ID: "a", Name: "Anna", GamesPlayed: 2, Teammates: map[string]int{"b": 1}, Opponents: map[string]int{"c": 1, "d": 1}, Status: rotation.StatusPlaying},
			{ID: "b", Name: "Ben", GamesPlayed: 2, Teammates: map[string]int{"a": 1}, Status: rotation.StatusPlaying},
		},
		Courts: []rotation.Court{{Number: 1, Name: "Centre", Status: rotation.CourtPlaying, Match: &rotation.Match{
			Team1: rotation.Team{"a", "b"}, Team2: rotation.Team{"c", "d"}, Court: 1, StartedAt: &started, Score: 9.5,
		}}},
		Queue:    []rotation.Match{{Team1: rotation.Team{"e", "a"}, Team2: rotation.Team{"f", "g"}, Provisional: true, Borrowed: []string{"a"}}},
		Weights:  []rotation.PreferenceWeight{{Player1: "a", Player2: "b", Type: rotation.WeightTeammate, Strength: 4}},
		Settings: rotation.Settings{CourtCount: 1, QueueTarget: 2},
		Round:    3,
	}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Tuesday night", got.Name)
	assert.Equal(t, 3, got.Round)
	assert.Equal(t, s.Players[0].Opponents, got.Players[0].Opponents)
	assert.Equal(t, s.Weights, got.Weights)
	assert.Equal(t, s.Settings, got.Settings)
	require.NotNil(t, got.Courts[0].Match)
	assert.Equal(t, s.Courts[0].Match.Team2, got.Courts[0].Match.Team2)
	assert.True(t, started.Equal(*got.Courts[0].Match.StartedAt))
	assert.Equal(t, []string{"a"}, got.Queue[0].Borrowed)
	assert.True(t, got.Queue[0].Provisional)

	s.Round = 4
	s.Name = "Tuesday late"
	require.NoError(t, store.Save(ctx, s))
	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Tuesday late", summaries[0].Name)
	assert.Equal(t, 4, summaries[0].Round)
}

func TestStore_GetMissing(t *testing.T) {
	_, err := setupTestStore(t).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_MatchLog(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	require.NoError(t, store.Save(ctx, &rotation.Session{ID: "s1"}))

	started := time.Date(2025, 7, 9, 19, 0, 0, 0, time.UTC)
	completed := started.Add(25 * time.Minute)
	first := rotation.Match{Team1: rotation.Team{"a", "b"}, Team2: rotation.Team{"c", "d"}, Court: 2, StartedAt: &started}
	second := rotation.Match{Team1: rotation.Team{"e", "f"}, Team2: rotation.Team{"g", "h"}, Court: 1}
	require.NoError(t, store.LogMatch(ctx, "s1", 1, first, completed))
	require.NoError(t, store.LogMatch(ctx, "s1", 1, second, completed))

	matches, err := store.Matches(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 2, matches[0].Court)
	assert.Equal(t, rotation.Team{"a", "b"}, matches[0].Team1)
	assert.Equal(t, rotation.Team{"c", "d"}, matches[0].Team2)
	require.NotNil(t, matches[0].StartedAt)
	assert.True(t, started.Equal(*matches[0].StartedAt))
	assert.True(t, completed.Equal(matches[0].CompletedAt))
	assert.Nil(t, matches[1].StartedAt)

	none, err := store.Matches(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}
