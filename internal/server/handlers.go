package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/wimm-developers/BreakTime/internal/scheduler"
	"github.com/wimm-developers/BreakTime/internal/work"
)

const (
	defaultNextCount = 5
	maxNextCount     = 50
)

type upcomingReminder struct {
	At           time.Time `json:"at"`
	DelayMinutes int       `json:"delay_minutes"`
}

type nextResponse struct {
	Enabled   bool               `json:"enabled"`
	Now       time.Time          `json:"now"`
	Reminders []upcomingReminder `json:"reminders"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "breaktime",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sched.Status())
}

// handleNext previews the next reminders from the current settings without
// touching the armed timer. ?count=N selects how many (1..50).
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	count := defaultNextCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNextCount {
			s.writeError(w, http.StatusBadRequest, "count must be between 1 and 50")
			return
		}
		count = n
	}

	settings, err := s.source.Settings()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	now := s.clock.Now()
	if settings.Location != nil {
		now = now.In(settings.Location)
	}
	resp := nextResponse{Now: now, Reminders: []upcomingReminder{}}

	reminders, err := work.Upcoming(settings.Schedule, now, count)
	if errors.Is(err, work.ErrDisabled) {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp.Enabled = true
	for _, at := range reminders {
		resp.Reminders = append(resp.Reminders, upcomingReminder{
			At:           at,
			DelayMinutes: int(at.Sub(now.Truncate(time.Minute)) / time.Minute),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	status, err := s.sched.Reschedule(scheduler.ReasonManual)
	if err != nil {
		s.log.Error().Err(err).Msg("Manual reschedule failed")
		s.writeJSON(w, http.StatusUnprocessableEntity, status)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
