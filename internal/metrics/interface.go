package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncAssignmentsGenerated()
	IncMatchesCompleted()
	IncQueueRebuilds()
	AddIntegrityViolations(n int)
	ObserveOptimizerDuration(duration float64)
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}

// TallyStore keeps per-session activity counts that survive restarts.
type TallyStore interface {
	Record(sessionID string, tally Tally)
	Totals() (map[Tally]int, error)
	SessionTotals(sessionID string) (map[Tally]int, error)
}

// Tally names a kind of session activity.
type Tally string

const (
	TallySessionsCreated  Tally = "sessions_created"
	TallyRoundsStarted    Tally = "rounds_started"
	TallyMatchesCompleted Tally = "matches_completed"
	TallyPlayersJoined    Tally = "players_joined"
	TallyPlayersLeft      Tally = "players_left"
)
