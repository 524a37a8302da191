package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// SessionSummary is a session log joined with its workout label.
type SessionSummary struct {
	models.SessionLog
	Workout models.WorkoutLabel `json:"workout"`
}

// StartSession creates a session log for a workout starting at the given time.
func (db *DB) StartSession(ctx context.Context, workoutID uuid.UUID, startedAt time.Time) (*models.SessionLog, error) {
	s := models.SessionLog{
		ID:        uuid.New(),
		WorkoutID: workoutID,
		StartedAt: startedAt.UTC(),
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_logs (id, workout_id, started_at) VALUES ($1, $2, $3)`,
		s.ID, s.WorkoutID, s.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return &s, nil
}

// GetSession retrieves one session log by ID.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.SessionLog, error) {
	var s models.SessionLog
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, started_at, completed_at, notes FROM session_logs WHERE id = $1`, id,
	).Scan(&s.ID, &s.WorkoutID, &s.StartedAt, &s.CompletedAt, &s.Notes)
	if err != nil {
		return nil, notFound(err, "session")
	}
	return &s, nil
}

// CompleteSession stamps the completion time of a session. The first completion wins;
// later calls leave the stored timestamp untouched.
func (db *DB) CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE session_logs SET completed_at = COALESCE(completed_at, $2) WHERE id = $1`,
		sessionID, completedAt.UTC())
	if err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session: %w", ErrNotFound)
	}
	return nil
}

// RecentSessions returns the latest sessions with their workout label, newest first.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.workout_id, s.started_at, s.completed_at, s.notes, w.name, w.color
		 FROM session_logs s
		 JOIN workouts w ON w.id = s.workout_id
		 ORDER BY s.started_at DESC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.WorkoutID, &s.StartedAt, &s.CompletedAt, &s.Notes,
			&s.Workout.Name, &s.Workout.Color); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// InsertSetLog records one performed set. ID and LoggedAt are assigned when zero.
func (db *DB) InsertSetLog(ctx context.Context, l models.SetLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO set_logs (id, session_log_id, exercise_id, actual_weight, actual_reps, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		l.ID, l.SessionLogID, l.ExerciseID, l.ActualWeight, l.ActualReps, l.LoggedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting set log: %w", err)
	}
	return nil
}

// CountSetLogs returns how many sets have been recorded for a session.
func (db *DB) CountSetLogs(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::int FROM set_logs WHERE session_log_id = $1`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting set logs: %w", err)
	}
	return n, nil
}
