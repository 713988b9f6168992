package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/notifier"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/samber/lo"
)

// Service is the single writer for sessions. Every change to one session runs
// load, engine call, integrity check and save under that session's lock, so
// concurrent requests never interleave. Different sessions proceed in parallel.
type Service struct {
	store    Store
	engine   *rotation.Engine
	pubsub   pubsub.PubSubClient
	notifier notifier.Notifier
	metrics  metrics.Metrics
	tallies  metrics.TallyStore
	defaults Defaults
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires a Service. notifier may be nil when no chat integration is configured.
func NewService(store Store, engine *rotation.Engine, pubsubClient pubsub.PubSubClient, notifier notifier.Notifier, metricsSvc metrics.Metrics, tallies metrics.TallyStore, defaults Defaults) *Service {
	if defaults.Courts <= 0 {
		defaults.Courts = 2
	}
	if defaults.QueueTarget <= 0 {
		defaults.QueueTarget = rotation.DefaultQueueTarget
	}
	return &Service{
		store:    store,
		engine:   engine,
		pubsub:   pubsubClient,
		notifier: notifier,
		metrics:  metricsSvc,
		tallies:  tallies,
		defaults: defaults,
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}
}

func (svc *Service) lock(id string) func() {
	svc.mu.Lock()
	l, ok := svc.locks[id]
	if !ok {
		l = &sync.Mutex{}
		svc.locks[id] = l
	}
	svc.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Create validates and stores a new session. Players and the session get
// generated ids when none are given.
func (svc *Service) Create(ctx context.Context, req CreateRequest) (rotation.Session, error) {
	courts := lo.Ternary(req.Courts > 0, req.Courts, svc.defaults.Courts)
	target := lo.Ternary(req.QueueTarget > 0, req.QueueTarget, svc.defaults.QueueTarget)

	s := rotation.Session{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Weights:  req.Weights,
		Settings: rotation.Settings{CourtCount: courts, QueueTarget: target},
	}
	for i := 0; i < courts; i++ {
		c := rotation.Court{Number: i + 1, Status: rotation.CourtEmpty}
		if i < len(req.CourtNames) {
			c.Name = req.CourtNames[i]
		}
		s.Courts = append(s.Courts, c)
	}
	for _, p := range req.Players {
		s.Players = append(s.Players, newPlayer(p))
	}
	if err := checkRoster(s.Players, s.Weights); err != nil {
		return rotation.Session{}, err
	}
	rotation.ApplyStatuses(&s)
	s.UpdatedAt = svc.now()

	if err := svc.store.Save(ctx, &s); err != nil {
		return rotation.Session{}, err
	}
	svc.tallies.Record(s.ID, metrics.TallySessionsCreated)
	log.Info("Created session", "session", s.ID, "name", s.Name, "players", len(s.Players), "courts", courts)
	return s, nil
}

// Get loads a session.
func (svc *Service) Get(ctx context.Context, id string) (rotation.Session, error) {
	s, err := svc.store.Get(ctx, id)
	if err != nil {
		return rotation.Session{}, err
	}
	return *s, nil
}

// List returns all stored sessions, most recently updated first.
func (svc *Service) List(ctx context.Context) ([]Summary, error) {
	return svc.store.List(ctx)
}

// Matches returns the completed match log of a session.
func (svc *Service) Matches(ctx context.Context, id string) ([]CompletedMatch, error) {
	if _, err := svc.store.Get(ctx, id); err != nil {
		return nil, err
	}
	return svc.store.Matches(ctx, id)
}

// StartRound reassigns all courts and the queue.
func (svc *Service) StartRound(ctx context.Context, id string, dryRun bool) (rotation.Session, error) {
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		return svc.engine.StartRound(s), nil
	})
	if err != nil {
		return s, err
	}
	svc.metrics.IncAssignmentsGenerated()
	svc.tallies.Record(s.ID, metrics.TallyRoundsStarted)
	svc.publish(ctx, pubsub.EventAssignmentUpdated, s, nil)
	svc.notify("court assignments", func(n notifier.Notifier) error { return n.SendCourtAssignments(s, dryRun) })
	return s, nil
}

// CompleteMatch records the match on court as played and refills the court.
func (svc *Service) CompleteMatch(ctx context.Context, id string, court int, dryRun bool) (rotation.Session, error) {
	var finished rotation.Match
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		for _, c := range s.Courts {
			if c.Number == court && c.Match != nil {
				finished = *c.Match
			}
		}
		return svc.engine.CompleteMatch(s, court)
	})
	if err != nil {
		return s, err
	}
	if err := svc.store.LogMatch(ctx, s.ID, s.Round, finished, svc.now()); err != nil {
		log.Error("Failed to log completed match", "session", s.ID, "court", court, "error", err)
	}
	svc.metrics.IncMatchesCompleted()
	svc.tallies.Record(s.ID, metrics.TallyMatchesCompleted)
	svc.publish(ctx, pubsub.EventMatchCompleted, s, func(e *pubsub.SessionEvent) {
		e.Court = court
		e.Match = &finished
	})
	svc.notify("match completed", func(n notifier.Notifier) error { return n.SendMatchCompleted(s, finished, dryRun) })
	return s, nil
}

// Join adds a player mid-session, or brings back one who left.
func (svc *Service) Join(ctx context.Context, id string, p rotation.Player) (rotation.Session, error) {
	p = newPlayer(p)
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		return svc.engine.AddPlayer(s, p), nil
	})
	if err != nil {
		return s, err
	}
	svc.tallies.Record(s.ID, metrics.TallyPlayersJoined)
	svc.publish(ctx, pubsub.EventPlayerJoined, s, func(e *pubsub.SessionEvent) { e.PlayerID = p.ID })
	return s, nil
}

// Leave marks a player as gone for the rest of the session.
func (svc *Service) Leave(ctx context.Context, id, playerID, reason string, dryRun bool) (rotation.Session, error) {
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		return svc.engine.RemovePlayer(s, playerID, reason, svc.now())
	})
	if err != nil {
		return s, err
	}
	svc.tallies.Record(s.ID, metrics.TallyPlayersLeft)
	svc.publish(ctx, pubsub.EventPlayerLeft, s, func(e *pubsub.SessionEvent) { e.PlayerID = playerID })
	svc.notify("player left", func(n notifier.Notifier) error { return n.SendPlayerLeft(s, playerID, dryRun) })
	return s, nil
}

// SetAway pauses or resumes a player.
func (svc *Service) SetAway(ctx context.Context, id, playerID string, away bool) (rotation.Session, error) {
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		return svc.engine.SetAway(s, playerID, away)
	})
	if err != nil {
		return s, err
	}
	svc.publish(ctx, pubsub.EventAssignmentUpdated, s, func(e *pubsub.SessionEvent) { e.PlayerID = playerID })
	return s, nil
}

// MaintainQueue tops the queue up, or rebuilds it from scratch when regenerate is set.
func (svc *Service) MaintainQueue(ctx context.Context, id string, regenerate bool) (rotation.Session, error) {
	s, err := svc.mutate(ctx, id, func(s rotation.Session) (rotation.Session, error) {
		if regenerate {
			return svc.engine.RegenerateQueue(s), nil
		}
		return svc.engine.MaintainQueueSize(s), nil
	})
	if err != nil {
		return s, err
	}
	svc.metrics.IncQueueRebuilds()
	svc.publish(ctx, pubsub.EventAssignmentUpdated, s, nil)
	return s, nil
}

// Validate runs the integrity check on the stored session.
func (svc *Service) Validate(ctx context.Context, id string) (rotation.ValidationResult, error) {
	s, err := svc.store.Get(ctx, id)
	if err != nil {
		return rotation.ValidationResult{}, err
	}
	return rotation.ValidateSessionIntegrity(*s), nil
}

// Assign runs the optimizer on an ad hoc roster without touching any session.
func (svc *Service) Assign(players []rotation.Player, courts int, weights []rotation.PreferenceWeight) (rotation.Assignment, error) {
	if err := checkRoster(players, weights); err != nil {
		return rotation.Assignment{}, err
	}
	start := time.Now()
	a := svc.engine.GenerateOptimalTeams(players, lo.Ternary(courts > 0, courts, svc.defaults.Courts), weights)
	svc.metrics.ObserveOptimizerDuration(time.Since(start).Seconds())
	svc.metrics.IncAssignmentsGenerated()
	return a, nil
}

func (svc *Service) mutate(ctx context.Context, id string, change func(rotation.Session) (rotation.Session, error)) (rotation.Session, error) {
	unlock := svc.lock(id)
	defer unlock()

	current, err := svc.store.Get(ctx, id)
	if err != nil {
		return rotation.Session{}, err
	}

	start := time.Now()
	next, err := change(*current)
	svc.metrics.ObserveOptimizerDuration(time.Since(start).Seconds())
	if err != nil {
		return rotation.Session{}, err
	}

	if result := rotation.ValidateSessionIntegrity(next); !result.IsValid {
		svc.metrics.AddIntegrityViolations(len(result.Errors))
		log.Warn("Session failed integrity check", "session", id, "errors", result.Errors)
	}
	if err := svc.store.Save(ctx, &next); err != nil {
		return rotation.Session{}, err
	}
	return next, nil
}

func (svc *Service) publish(ctx context.Context, topic pubsub.EventType, s rotation.Session, decorate func(*pubsub.SessionEvent)) {
	event := pubsub.SessionEvent{
		Type:      topic,
		SessionID: s.ID,
		Round:     s.Round,
		Courts:    s.Courts,
		Queue:     s.Queue,
		At:        svc.now(),
	}
	if decorate != nil {
		decorate(&event)
	}
	if err := svc.pubsub.SendMessage(ctx, topic, event); err != nil {
		log.Error("Failed to publish session event", "session", s.ID, "topic", topic, "error", err)
	}
}

func (svc *Service) notify(what string, send func(notifier.Notifier) error) {
	if svc.notifier == nil {
		return
	}
	if err := send(svc.notifier); err != nil {
		log.Error("Failed to send notification", "kind", what, "error", err)
	}
}

func newPlayer(p rotation.Player) rotation.Player {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	return p
}

// checkRoster rejects rosters the engine cannot reason about: repeated ids
// and weights that are malformed or point at unknown players.
func checkRoster(players []rotation.Player, weights []rotation.PreferenceWeight) error {
	if dups := lo.FindDuplicates(lo.Map(players, func(p rotation.Player, _ int) string { return p.ID })); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate player ids %v", ErrInvalidRequest, dups)
	}
	known := lo.Associate(players, func(p rotation.Player) (string, bool) { return p.ID, true })
	for _, w := range weights {
		switch {
		case w.Type != rotation.WeightTeammate && w.Type != rotation.WeightOpponent:
			return fmt.Errorf("%w: unknown weight type %q", ErrInvalidRequest, w.Type)
		case w.Strength < 1 || w.Strength > 10:
			return fmt.Errorf("%w: weight strength %d outside 1..10", ErrInvalidRequest, w.Strength)
		case w.Player1 == w.Player2:
			return fmt.Errorf("%w: weight links %s to itself", ErrInvalidRequest, w.Player1)
		case !known[w.Player1] || !known[w.Player2]:
			return fmt.Errorf("%w: weight references unknown player", ErrInvalidRequest)
		}
	}
	return nil
}
