package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// tallyStore keeps per-session activity counts in the session_tallies table.
type tallyStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewTallyStore returns a TallyStore backed by db.
func NewTallyStore(db *sql.DB) TallyStore {
	return &tallyStore{db: db}
}

// Record bumps tally for sessionID by one. Errors are only logged so a lost
// count never fails the rotation that caused it.
func (s *tallyStore) Record(sessionID string, tally Tally) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO session_tallies (session_id, tally, count) VALUES (?, ?, 1)
		ON CONFLICT(session_id, tally) DO UPDATE SET count = count + 1;
	`, sessionID, string(tally))
	if err != nil {
		log.Error("Failed to record tally", "session", sessionID, "tally", tally, "error", err)
		return
	}
	log.Debug("Recorded tally", "session", sessionID, "tally", tally)
}

// Totals sums every tally across all sessions.
func (s *tallyStore) Totals() (map[Tally]int, error) {
	return s.query("SELECT tally, SUM(count) FROM session_tallies GROUP BY tally")
}

// SessionTotals returns the tallies of one session. A session with no
// activity yields an empty map.
func (s *tallyStore) SessionTotals(sessionID string) (map[Tally]int, error) {
	return s.query("SELECT tally, count FROM session_tallies WHERE session_id = ?", sessionID)
}

func (s *tallyStore) query(q string, args ...any) (map[Tally]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[Tally]int)
	for rows.Next() {
		var tally string
		var count int
		if err := rows.Scan(&tally, &count); err != nil {
			return nil, err
		}
		totals[Tally(tally)] = count
	}
	return totals, rows.Err()
}
