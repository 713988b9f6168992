package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/court-rotation/internal/rotation"
	"github.com/mauv0809/court-rotation/internal/session"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tallies, err := s.Tallies.Totals()
		if err != nil {
			log.Error("Failed to read tallies", "error", err)
			http.Error(w, "Failed to read stats", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, tallies)
	}
}

func (s *Server) SessionStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.Sessions.Get(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		tallies, err := s.Tallies.SessionTotals(id)
		if err != nil {
			log.Error("Failed to read session tallies", "session", id, "error", err)
			http.Error(w, "Failed to read stats", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, tallies)
	}
}

func (s *Server) AssignHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignRequest
		if !decodeBody(w, r, &req) {
			return
		}
		assignment, err := s.Sessions.Assign(req.Players, req.Courts, req.Weights)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, assignment)
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.CreateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		created, err := s.Sessions.Create(r.Context(), req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := s.Sessions.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, summaries)
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		found, err := s.Sessions.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, found)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Sessions.Matches(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ValidateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.Sessions.Validate(r.Context(), r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) StartRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := s.Sessions.StartRound(r.Context(), r.PathValue("id"), isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) MaintainQueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regenerate := r.URL.Query().Get("regenerate") == "true"
		updated, err := s.Sessions.MaintainQueue(r.Context(), r.PathValue("id"), regenerate)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		court, err := strconv.Atoi(r.PathValue("court"))
		if err != nil {
			http.Error(w, "Court must be a number", http.StatusBadRequest)
			return
		}
		updated, err := s.Sessions.CompleteMatch(r.Context(), r.PathValue("id"), court, isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) JoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var player rotation.Player
		if !decodeBody(w, r, &player) {
			return
		}
		updated, err := s.Sessions.Join(r.Context(), r.PathValue("id"), player)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) LeaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reason := r.URL.Query().Get("reason")
		updated, err := s.Sessions.Leave(r.Context(), r.PathValue("id"), r.PathValue("player"), reason, isDryRunFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

// AwayHandler pauses a player, or resumes them with ?away=false.
func (s *Server) AwayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		away := r.URL.Query().Get("away") != "false"
		updated, err := s.Sessions.SetAway(r.Context(), r.PathValue("id"), r.PathValue("player"), away)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn("Failed to decode request body", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, rotation.ErrCourtNotFound),
		errors.Is(err, rotation.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, rotation.ErrCourtEmpty):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
