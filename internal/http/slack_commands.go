package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-rotation/internal/rotation"
)

func (s *Server) CourtsCommandHandler() http.HandlerFunc {
	return s.slashCommand("courts", s.formatCourts)
}

func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return s.slashCommand("leaderboard", s.formatLeaderboard)
}

func (s *Server) formatCourts(session rotation.Session) (any, error) {
	return s.Notifier.FormatCourtsResponse(session)
}

func (s *Server) formatLeaderboard(session rotation.Session) (any, error) {
	return s.Notifier.FormatLeaderboardResponse(session)
}

// slashCommand resolves the session named in the command text, or the most
// recently updated one when the text is empty, and answers with format's message.
func (s *Server) slashCommand(name string, format func(rotation.Session) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Notifier == nil {
			http.Error(w, "Slack is not configured", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		id := strings.TrimSpace(r.FormValue("text"))
		if id == "" {
			summaries, err := s.Sessions.List(r.Context())
			if err != nil {
				respondError(w, err)
				return
			}
			if len(summaries) == 0 {
				http.Error(w, "No sessions yet", http.StatusNotFound)
				return
			}
			id = summaries[0].ID
		}
		log.Debug("Slash command", "command", name, "session", id, "user", r.FormValue("user_name"))

		found, err := s.Sessions.Get(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		msg, err := format(found)
		if err != nil {
			log.Error("Failed to format slash command response", "command", name, "error", err)
			http.Error(w, "Failed to format response", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, msg)
	}
}
