package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts     int64            `json:"total_workouts"`
	TotalExercises    int64            `json:"total_exercises"`
	TotalSessions     int64            `json:"total_sessions"`
	CompletedSessions int64            `json:"completed_sessions"`
	TotalSets         int64            `json:"total_sets"`
	UpcomingCommits   int64            `json:"upcoming_commitments"`
	EarliestSession   *time.Time       `json:"earliest_session"`
	LatestSession     *time.Time       `json:"latest_session"`
	SessionsByWorkout []WorkoutRunStat `json:"sessions_by_workout"`
}

// WorkoutRunStat holds summary stats for the sessions of a single workout.
type WorkoutRunStat struct {
	Name           string  `json:"name"`
	Sessions       int64   `json:"sessions"`
	Completed      int64   `json:"completed"`
	AvgDurationMin float64 `json:"avg_duration_min"`
}

// GetDataStats returns aggregate statistics over everything stored.
func (db *DB) GetDataStats(ctx context.Context, today time.Time) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM workouts),
			(SELECT COUNT(*) FROM exercises),
			(SELECT COUNT(*) FROM session_logs),
			(SELECT COUNT(*) FROM session_logs WHERE completed_at IS NOT NULL),
			(SELECT COUNT(*) FROM set_logs),
			(SELECT COUNT(*) FROM commitments WHERE scheduled_date >= $1::date)`,
		truncateDay(today),
	).Scan(&stats.TotalWorkouts, &stats.TotalExercises, &stats.TotalSessions,
		&stats.CompletedSessions, &stats.TotalSets, &stats.UpcomingCommits)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(started_at), MAX(started_at) FROM session_logs`,
	).Scan(&stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT w.name,
		        COUNT(s.id),
		        COUNT(s.completed_at),
		        COALESCE(AVG(EXTRACT(EPOCH FROM (s.completed_at - s.started_at)) / 60)
		                 FILTER (WHERE s.completed_at IS NOT NULL), 0)
		 FROM workouts w
		 JOIN session_logs s ON s.workout_id = w.id
		 GROUP BY w.name
		 ORDER BY COUNT(s.id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions by workout: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutRunStat
		if err := rows.Scan(&s.Name, &s.Sessions, &s.Completed, &s.AvgDurationMin); err != nil {
			return nil, fmt.Errorf("scanning workout stat: %w", err)
		}
		stats.SessionsByWorkout = append(stats.SessionsByWorkout, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
