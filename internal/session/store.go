package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/vmihailenco/msgpack/v5"
)

type store struct {
	db *sql.DB
}

// NewStore returns a Store backed by the sessions and match_log tables.
func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

// Save upserts the whole snapshot, encoded with msgpack.
func (s *store) Save(ctx context.Context, session *rotation.Session) error {
	blob, err := msgpack.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, round, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			round = excluded.round,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at;
	`, session.ID, session.Name, session.Round, blob, now, now)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	log.Debug("Saved session", "session", session.ID, "round", session.Round, "bytes", len(blob))
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*rotation.Session, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM sessions WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	var session rotation.Session
	if err := msgpack.Unmarshal(blob, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

func (s *store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, round, updated_at FROM sessions ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum     Summary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Round, &updated); err != nil {
			return nil, err
		}
		sum.UpdatedAt = time.Unix(updated, 0).UTC()
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *store) LogMatch(ctx context.Context, sessionID string, round int, m rotation.Match, completedAt time.Time) error {
	var startedAt sql.NullInt64
	if m.StartedAt != nil {
		startedAt = sql.NullInt64{Int64: m.StartedAt.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_log (session_id, round, court, team1, team2, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`, sessionID, round, m.Court, joinTeam(m.Team1), joinTeam(m.Team2), startedAt, completedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to log match for session %s: %w", sessionID, err)
	}
	return nil
}

func (s *store) Matches(ctx context.Context, sessionID string) ([]CompletedMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round, court, team1, team2, started_at, completed_at
		FROM match_log WHERE session_id = ? ORDER BY id;
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	matches := []CompletedMatch{}
	for rows.Next() {
		var (
			m            CompletedMatch
			team1, team2 string
			startedAt    sql.NullInt64
			completedAt  int64
		)
		if err := rows.Scan(&m.Round, &m.Court, &team1, &team2, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		m.SessionID = sessionID
		m.Team1, m.Team2 = splitTeam(team1), splitTeam(team2)
		if startedAt.Valid {
			at := time.Unix(startedAt.Int64, 0).UTC()
			m.StartedAt = &at
		}
		m.CompletedAt = time.Unix(completedAt, 0).UTC()
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func joinTeam(t rotation.Team) string {
	return t[0] + "," + t[1]
}

func splitTeam(s string) rotation.Team {
	a, b, _ := strings.Cut(s, ",")
	return rotation.Team{a, b}
}
