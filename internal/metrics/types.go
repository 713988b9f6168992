package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	AssignmentsGenerated prometheus.Counter
	MatchesCompleted     prometheus.Counter
	QueueRebuilds        prometheus.Counter
	IntegrityViolations  prometheus.Counter
	OptimizerDuration    prometheus.Histogram
	NotifSent            prometheus.Counter
	NotifFailed          prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}
