package rotation

import (
	"math/rand"
	"sync"
	"time"
)

const defaultJitter = 0.05

// Engine computes court assignments and queues. It holds no session state;
// the only thing it owns is its random source, which is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	jitter float64
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes tie-breaking reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand injects a random source.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithJitter sets the half-width of the random score tiebreak. Zero disables it.
func WithJitter(jitter float64) Option {
	return func(e *Engine) {
		e.jitter = jitter
	}
}

// WithClock overrides the time source used to stamp matches.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine seeded from the wall clock unless an option says otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{
		jitter: defaultJitter,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e
}

func (e *Engine) float64() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(n, swap)
}

// noise returns a uniform value in [-jitter, +jitter].
func (e *Engine) noise() float64 {
	if e.jitter == 0 {
		return 0
	}
	return (e.float64()*2 - 1) * e.jitter
}
