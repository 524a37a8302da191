package server

import (
	"net/http"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
)

func (s *Server) handleListCommitments(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(storage.DateLayout, v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from date"})
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(storage.DateLayout, v); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to date"})
			return
		}
	}
	commitments, err := s.db.ListCommitments(r.Context(), from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(commitments))
}

type createCommitmentRequest struct {
	WorkoutID     uuid.UUID `json:"workout_id"`
	ScheduledDate string    `json:"scheduled_date"`
	Note          *string   `json:"note"`
}

func (s *Server) handleCreateCommitment(w http.ResponseWriter, r *http.Request) {
	var req createCommitmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id is required"})
		return
	}
	date, err := time.Parse(storage.DateLayout, req.ScheduledDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduled_date must be YYYY-MM-DD"})
		return
	}
	if _, err := s.db.GetWorkout(r.Context(), req.WorkoutID); err != nil {
		s.writeError(w, err)
		return
	}
	c, err := s.db.InsertCommitment(r.Context(), models.Commitment{
		WorkoutID:     req.WorkoutID,
		ScheduledDate: date,
		Note:          req.Note,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCommitment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "commitment")
	if !ok {
		return
	}
	if err := s.db.DeleteCommitment(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartCommitment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "commitment")
	if !ok {
		return
	}
	sess, err := s.db.StartCommitment(r.Context(), id, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.CounterSessionsStarted.Inc()
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := s.now().UTC()
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := time.Parse("2006-01", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = parsed
	}
	days, err := s.db.MonthCalendar(r.Context(), month.Year(), month.Month())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}
