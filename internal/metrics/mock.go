package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	assignmentsGenerated int
	matchesCompleted     int
	queueRebuilds        int
	integrityViolations  int
	optimizerDurations   []float64
	notifSent            int
	notifFailed          int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		optimizerDurations: make([]float64, 0),
	}
}

func (m *Mock) IncAssignmentsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignmentsGenerated++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) IncQueueRebuilds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueRebuilds++
}

func (m *Mock) AddIntegrityViolations(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrityViolations += n
}

func (m *Mock) ObserveOptimizerDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.optimizerDurations = append(m.optimizerDurations, duration)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// AssignmentsGenerated returns the number of times IncAssignmentsGenerated was called.
func (m *Mock) AssignmentsGenerated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignmentsGenerated
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// QueueRebuilds returns the number of times IncQueueRebuilds was called.
func (m *Mock) QueueRebuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueRebuilds
}

// IntegrityViolations returns the sum passed to AddIntegrityViolations.
func (m *Mock) IntegrityViolations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.integrityViolations
}

// OptimizerObservations returns how many durations were observed.
func (m *Mock) OptimizerObservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.optimizerDurations)
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

// TallyMock is an in-memory TallyStore.
type TallyMock struct {
	mu     sync.Mutex
	counts map[string]map[Tally]int
}

func NewTallyMock() *TallyMock {
	return &TallyMock{counts: map[string]map[Tally]int{}}
}

func (m *TallyMock) Record(sessionID string, tally Tally) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[sessionID] == nil {
		m.counts[sessionID] = map[Tally]int{}
	}
	m.counts[sessionID][tally]++
}

func (m *TallyMock) Totals() (map[Tally]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[Tally]int{}
	for _, tallies := range m.counts {
		for k, v := range tallies {
			out[k] += v
		}
	}
	return out, nil
}

func (m *TallyMock) SessionTotals(sessionID string) (map[Tally]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[Tally]int{}
	for k, v := range m.counts[sessionID] {
		out[k] = v
	}
	return out, nil
}

// Get returns the count of tally summed over all sessions.
func (m *TallyMock) Get(tally Tally) int {
	totals, _ := m.Totals()
	return totals[tally]
}
