package server

import (
	"net/http"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/session"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
)

type startSessionRequest struct {
	WorkoutID uuid.UUID  `json:"workout_id"`
	StartedAt *time.Time `json:"started_at"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WorkoutID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id is required"})
		return
	}
	if _, err := s.db.GetWorkout(r.Context(), req.WorkoutID); err != nil {
		s.writeError(w, err)
		return
	}

	at := s.now()
	if req.StartedAt != nil {
		at = *req.StartedAt
	}
	sess, err := s.db.StartSession(r.Context(), req.WorkoutID, at)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.CounterSessionsStarted.Inc()
	s.log.Info("session started", "session", sess.ID, "workout", sess.WorkoutID)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	sess, err := s.db.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.db.CountSetLogs(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SessionDetail{SessionLog: *sess, SetCount: n})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.db.SessionHistory(r.Context(), queryInt(r, "limit", storage.DefaultHistoryLimit))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(history))
}

func (s *Server) handleRecentSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.RecentSessions(r.Context(), queryInt(r, "limit", 3))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sessions))
}

type logSetRequest struct {
	ID           uuid.UUID  `json:"id"`
	ExerciseID   uuid.UUID  `json:"exercise_id"`
	ActualWeight float64    `json:"actual_weight"`
	ActualReps   int        `json:"actual_reps"`
	LoggedAt     *time.Time `json:"logged_at"`
}

// handleLogSet records one set. Clients may supply the set ID so that a
// retried request does not insert twice.
func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	var req logSetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id is required"})
		return
	}
	if req.ActualWeight < 0 || req.ActualReps < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight and reps must not be negative"})
		return
	}

	ex, err := s.db.GetExercise(r.Context(), req.ExerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.db.GetSession(r.Context(), sessionID); err != nil {
		s.writeError(w, err)
		return
	}

	entry := models.SetLog{
		ID:           req.ID,
		SessionLogID: sessionID,
		ExerciseID:   req.ExerciseID,
		ActualWeight: req.ActualWeight,
		ActualReps:   req.ActualReps,
		LoggedAt:     s.now().UTC(),
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if req.LoggedAt != nil {
		entry.LoggedAt = req.LoggedAt.UTC()
	}
	if err := s.db.InsertSetLog(r.Context(), entry); err != nil {
		s.writeError(w, err)
		return
	}

	fb := session.Evaluate(
		session.Set{Weight: entry.ActualWeight, Reps: entry.ActualReps},
		session.Target{Weight: ex.TargetWeight, Reps: ex.TargetReps},
	)
	s.metrics.CounterSetLogs.WithLabelValues(fb.Outcome.String()).Inc()
	writeJSON(w, http.StatusCreated, entry)
}

type completeSessionRequest struct {
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session")
	if !ok {
		return
	}
	var req completeSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	at := s.now()
	if req.CompletedAt != nil {
		at = *req.CompletedAt
	}
	if err := s.db.CompleteSession(r.Context(), id, at); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.CounterSessionsCompleted.Inc()
	s.log.Info("session completed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}
