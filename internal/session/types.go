package session

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/court-rotation/internal/rotation"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Store persists session snapshots and the log of completed matches.
type Store interface {
	Save(ctx context.Context, s *rotation.Session) error
	Get(ctx context.Context, id string) (*rotation.Session, error)
	List(ctx context.Context) ([]Summary, error)
	LogMatch(ctx context.Context, sessionID string, round int, m rotation.Match, completedAt time.Time) error
	Matches(ctx context.Context, sessionID string) ([]CompletedMatch, error)
}

// Summary is the listing view of a stored session.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Round     int       `json:"round"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletedMatch is one row of a session's match log.
type CompletedMatch struct {
	SessionID   string        `json:"session_id"`
	Round       int           `json:"round"`
	Court       int           `json:"court"`
	Team1       rotation.Team `json:"team1"`
	Team2       rotation.Team `json:"team2"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
}

// CreateRequest describes a new session.
type CreateRequest struct {
	Name        string                      `json:"name"`
	Courts      int                         `json:"courts"`
	CourtNames  []string                    `json:"court_names,omitempty"`
	QueueTarget int                         `json:"queue_target"`
	Players     []rotation.Player           `json:"players"`
	Weights     []rotation.PreferenceWeight `json:"weights"`
}

// Defaults are applied to create requests that leave a field unset.
type Defaults struct {
	Courts      int
	QueueTarget int
}
