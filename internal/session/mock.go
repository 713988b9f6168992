package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mauv0809/court-rotation/internal/rotation"
)

// MockStore is an in-memory Store for testing. It is safe for concurrent use.
type MockStore struct {
	mu       sync.Mutex
	sessions map[string]rotation.Session
	matches  map[string][]CompletedMatch

	// Spies
	SaveFunc func(s *rotation.Session) error

	SaveCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{
		sessions: map[string]rotation.Session{},
		matches:  map[string][]CompletedMatch{},
	}
}

func (m *MockStore) Save(_ context.Context, s *rotation.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveFunc != nil {
		if err := m.SaveFunc(s); err != nil {
			return err
		}
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MockStore) Get(_ context.Context, id string) (*rotation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	c := s.Clone()
	return &c, nil
}

func (m *MockStore) List(_ context.Context) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		summaries = append(summaries, Summary{ID: s.ID, Name: s.Name, Round: s.Round, UpdatedAt: s.UpdatedAt})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (m *MockStore) LogMatch(_ context.Context, sessionID string, round int, match rotation.Match, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[sessionID] = append(m.matches[sessionID], CompletedMatch{
		SessionID:   sessionID,
		Round:       round,
		Court:       match.Court,
		Team1:       match.Team1,
		Team2:       match.Team2,
		StartedAt:   match.StartedAt,
		CompletedAt: completedAt,
	})
	return nil
}

func (m *MockStore) Matches(_ context.Context, sessionID string) ([]CompletedMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CompletedMatch{}, m.matches[sessionID]...), nil
}
