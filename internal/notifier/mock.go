package notifier

import (
	"sync"

	"github.com/mauv0809/court-rotation/internal/rotation"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendCourtAssignmentsFunc func(s rotation.Session, dryRun bool) error
	SendMatchCompletedFunc   func(s rotation.Session, finished rotation.Match, dryRun bool) error

	// Call records
	SendCourtAssignmentsCalls []SendCall
	SendMatchCompletedCalls   []SendMatchCompletedCall
	SendPlayerLeftCalls       []SendPlayerLeftCall
	FormatCourtsCalls         []rotation.Session
	FormatLeaderboardCalls    []rotation.Session
}

// SendCall holds the arguments for a session wide notification.
type SendCall struct {
	Session rotation.Session
	DryRun  bool
}

type SendMatchCompletedCall struct {
	Session  rotation.Session
	Finished rotation.Match
	DryRun   bool
}

type SendPlayerLeftCall struct {
	Session  rotation.Session
	PlayerID string
	DryRun   bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCourtAssignmentsCalls = nil
	m.SendMatchCompletedCalls = nil
	m.SendPlayerLeftCalls = nil
	m.FormatCourtsCalls = nil
	m.FormatLeaderboardCalls = nil
}

func (m *Mock) SendCourtAssignments(s rotation.Session, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCourtAssignmentsCalls = append(m.SendCourtAssignmentsCalls, SendCall{Session: s, DryRun: dryRun})
	if m.SendCourtAssignmentsFunc != nil {
		return m.SendCourtAssignmentsFunc(s, dryRun)
	}
	return nil
}

func (m *Mock) SendMatchCompleted(s rotation.Session, finished rotation.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchCompletedCalls = append(m.SendMatchCompletedCalls, SendMatchCompletedCall{Session: s, Finished: finished, DryRun: dryRun})
	if m.SendMatchCompletedFunc != nil {
		return m.SendMatchCompletedFunc(s, finished, dryRun)
	}
	return nil
}

func (m *Mock) SendPlayerLeft(s rotation.Session, playerID string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPlayerLeftCalls = append(m.SendPlayerLeftCalls, SendPlayerLeftCall{Session: s, PlayerID: playerID, DryRun: dryRun})
	return nil
}

func (m *Mock) FormatCourtsResponse(s rotation.Session) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatCourtsCalls = append(m.FormatCourtsCalls, s)
	return map[string]string{"session": s.ID, "kind": "courts"}, nil
}

func (m *Mock) FormatLeaderboardResponse(s rotation.Session) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FormatLeaderboardCalls = append(m.FormatLeaderboardCalls, s)
	return map[string]string{"session": s.ID, "kind": "leaderboard"}, nil
}

// Counts returns how many court, match and leave notifications were sent.
func (m *Mock) Counts() (courts, completed, left int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendCourtAssignmentsCalls), len(m.SendMatchCompletedCalls), len(m.SendPlayerLeftCalls)
}
