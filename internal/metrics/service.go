package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		AssignmentsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_assignments_generated_total",
			Help: "The total number of full court assignments generated.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_matches_completed_total",
			Help: "The total number of matches recorded as completed.",
		}),
		QueueRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_queue_rebuilds_total",
			Help: "The total number of times a session queue was topped up or rebuilt.",
		}),
		IntegrityViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_integrity_violations_total",
			Help: "The total number of integrity findings on saved sessions.",
		}),
		OptimizerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rotation_optimizer_duration_seconds",
			Help:    "The duration of engine calls that reassign courts or the queue.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_notifications_sent_total",
			Help: "The total number of chat notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rotation_notifications_failed_total",
			Help: "The total number of chat notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rotation_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.AssignmentsGenerated,
		s.MatchesCompleted,
		s.QueueRebuilds,
		s.IntegrityViolations,
		s.OptimizerDuration,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncAssignmentsGenerated() {
	s.AssignmentsGenerated.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncQueueRebuilds() {
	s.QueueRebuilds.Inc()
}

func (s *Service) AddIntegrityViolations(n int) {
	s.IntegrityViolations.Add(float64(n))
}

func (s *Service) ObserveOptimizerDuration(duration float64) {
	s.OptimizerDuration.Observe(duration)
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
