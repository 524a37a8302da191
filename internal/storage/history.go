package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// DefaultHistoryLimit is the number of sessions the history view loads.
const DefaultHistoryLimit = 30

// LoggedSet is a set log joined with the exercise name it was recorded against.
type LoggedSet struct {
	models.SetLog
	ExerciseName string `json:"exercise_name"`
}

// SessionWithSets is a session with its workout label and performed sets.
type SessionWithSets struct {
	SessionSummary
	Sets []LoggedSet `json:"sets"`
}

// DurationMinutes returns whole minutes between start and completion, or -1 while in progress.
func (s SessionWithSets) DurationMinutes() int {
	if s.CompletedAt == nil {
		return -1
	}
	return int(s.CompletedAt.Sub(s.StartedAt) / time.Minute)
}

// SessionHistory returns the most recent sessions with their sets in logging order.
func (db *DB) SessionHistory(ctx context.Context, limit int) ([]SessionWithSets, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	sessions, err := db.RecentSessions(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []SessionWithSets{}, nil
	}

	ids := make([]uuid.UUID, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT l.id, l.session_log_id, l.exercise_id, l.actual_weight, l.actual_reps, l.logged_at, e.name
		 FROM set_logs l
		 JOIN exercises e ON e.id = l.exercise_id
		 WHERE l.session_log_id = ANY($1)
		 ORDER BY l.logged_at ASC`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	bySession := make(map[uuid.UUID][]LoggedSet)
	for rows.Next() {
		var l LoggedSet
		if err := rows.Scan(&l.ID, &l.SessionLogID, &l.ExerciseID, &l.ActualWeight,
			&l.ActualReps, &l.LoggedAt, &l.ExerciseName); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		bySession[l.SessionLogID] = append(bySession[l.SessionLogID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attachSets(sessions, bySession), nil
}

func attachSets(sessions []SessionSummary, bySession map[uuid.UUID][]LoggedSet) []SessionWithSets {
	result := make([]SessionWithSets, 0, len(sessions))
	for _, s := range sessions {
		sets := bySession[s.ID]
		if sets == nil {
			sets = []LoggedSet{}
		}
		result = append(result, SessionWithSets{SessionSummary: s, Sets: sets})
	}
	return result
}

// ProgressPoint is one logged set of a movement compared with the target at the time.
type ProgressPoint struct {
	LoggedAt     time.Time `json:"logged_at"`
	WorkoutName  string    `json:"workout_name"`
	ActualWeight float64   `json:"actual_weight"`
	ActualReps   int       `json:"actual_reps"`
	TargetWeight float64   `json:"target_weight"`
	TargetReps   int       `json:"target_reps"`
}

// ExerciseProgress returns logged sets for exercises whose name matches (case-insensitive,
// partial), newest first.
func (db *DB) ExerciseProgress(ctx context.Context, name string, limit int) ([]ProgressPoint, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT l.logged_at, w.name, l.actual_weight, l.actual_reps, e.target_weight, e.target_reps
		 FROM set_logs l
		 JOIN exercises e ON e.id = l.exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE e.name ILIKE '%' || $1 || '%'
		 ORDER BY l.logged_at DESC
		 LIMIT $2`,
		name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise progress: %w", err)
	}
	defer rows.Close()

	var result []ProgressPoint
	for rows.Next() {
		var p ProgressPoint
		if err := rows.Scan(&p.LoggedAt, &p.WorkoutName, &p.ActualWeight, &p.ActualReps,
			&p.TargetWeight, &p.TargetReps); err != nil {
			return nil, fmt.Errorf("scanning exercise progress: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
