package http

import (
	"net/http"

	"github.com/mauv0809/court-rotation/internal/config"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/notifier"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/session"
)

// NewServer wires the HTTP routes. notifier may be nil, in which case the
// slash commands answer 503.
func NewServer(sessions *session.Service, tallies metrics.TallyStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Sessions:       sessions,
		Tallies:        tallies,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	slack := slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("POST /assign", Chain(s.AssignHandler(), paramsMiddleware))

	s.Router.Handle("POST /sessions", Chain(s.CreateSessionHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions", Chain(s.ListSessionsHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}", Chain(s.GetSessionHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}/stats", Chain(s.SessionStatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /sessions/{id}/validate", Chain(s.ValidateSessionHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/round", Chain(s.StartRoundHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/queue", Chain(s.MaintainQueueHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/courts/{court}/complete", Chain(s.CompleteMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/players", Chain(s.JoinHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/players/{player}/leave", Chain(s.LeaveHandler(), paramsMiddleware))
	s.Router.Handle("POST /sessions/{id}/players/{player}/away", Chain(s.AwayHandler(), paramsMiddleware))

	s.Router.Handle("POST /pubsub/session-events", Chain(s.SessionEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /slack/command/courts", Chain(s.CourtsCommandHandler(), paramsMiddleware, slack))
	s.Router.Handle("POST /slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware, slack))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
