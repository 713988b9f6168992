package http

import (
	"net/http"

	"github.com/mauv0809/court-rotation/internal/config"
	"github.com/mauv0809/court-rotation/internal/metrics"
	"github.com/mauv0809/court-rotation/internal/notifier"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/mauv0809/court-rotation/internal/session"
)

type Server struct {
	Sessions       *session.Service
	Tallies        metrics.TallyStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// assignRequest is the body of an ad hoc assignment.
type assignRequest struct {
	Players []rotation.Player           `json:"players"`
	Courts  int                         `json:"courts"`
	Weights []rotation.PreferenceWeight `json:"weights"`
}

// pushMessage is the envelope of a Pub/Sub push delivery.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}
