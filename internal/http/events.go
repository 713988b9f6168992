package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-rotation/internal/pubsub"
	"github.com/mauv0809/court-rotation/internal/session"
)

// SessionEventHandler receives pushed session events and audits the session
// they refer to. Unknown sessions are acknowledged so the push is not retried.
func (s *Server) SessionEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		var event pubsub.SessionEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			log.Error("Failed to decode session event", "error", err)
			http.Error(w, "Invalid event", http.StatusBadRequest)
			return
		}

		result, err := s.Sessions.Validate(r.Context(), event.SessionID)
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			log.Warn("Event for unknown session", "session", event.SessionID, "type", event.Type)
		case err != nil:
			respondError(w, err)
			return
		case !result.IsValid:
			s.Metrics.AddIntegrityViolations(len(result.Errors))
			log.Warn("Session failed audit", "session", event.SessionID, "type", event.Type, "errors", result.Errors)
		default:
			log.Debug("Session passed audit", "session", event.SessionID, "type", event.Type, "round", event.Round)
		}
		w.Write([]byte("OK"))
	}
}
