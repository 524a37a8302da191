package storage

import (
	"context"
	"fmt"
	"time"
)

// VolumeSummary holds aggregated set volume for a period.
type VolumeSummary struct {
	Sets              int     `json:"sets"`
	TotalReps         int     `json:"total_reps"`
	Tonnage           float64 `json:"tonnage"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
	TargetsMet        int     `json:"targets_met"`
}

// WorkoutPeriodSummary holds how often one workout was run within a period.
type WorkoutPeriodSummary struct {
	Name      string `json:"name"`
	Sessions  int    `json:"sessions"`
	Completed int    `json:"completed"`
}

// TrainingSummaryPeriod holds combined session and volume data for one time period.
type TrainingSummaryPeriod struct {
	Period   string                 `json:"period"`
	Workouts []WorkoutPeriodSummary `json:"workouts"`
	Volume   *VolumeSummary         `json:"volume,omitempty"`
}

// GetTrainingSummary returns aggregated session counts and set volume per period, newest first.
// Tonnage is in the unit the sets were logged in.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error) {
	interval := truncInterval(bucket)

	sessionRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, s.started_at)::date AS period,
		        w.name,
		        COUNT(*)::int,
		        COUNT(s.completed_at)::int
		 FROM session_logs s
		 JOIN workouts w ON w.id = s.workout_id
		 WHERE s.started_at >= $2 AND s.started_at < $3
		 GROUP BY period, w.name
		 ORDER BY period DESC, w.name`,
		interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying session summary: %w", err)
	}
	defer sessionRows.Close()

	acc := newPeriodAccumulator()
	for sessionRows.Next() {
		var periodTime time.Time
		var ws WorkoutPeriodSummary
		if err := sessionRows.Scan(&periodTime, &ws.Name, &ws.Sessions, &ws.Completed); err != nil {
			return nil, fmt.Errorf("scanning session summary: %w", err)
		}
		p := acc.get(periodTime)
		p.Workouts = append(p.Workouts, ws)
	}
	if err := sessionRows.Err(); err != nil {
		return nil, err
	}

	volumeRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, l.logged_at)::date AS period,
		        COUNT(*)::int,
		        COALESCE(SUM(l.actual_reps), 0)::int,
		        COALESCE(SUM(l.actual_weight * l.actual_reps), 0),
		        COUNT(DISTINCT l.session_log_id)::int,
		        COUNT(*) FILTER (WHERE l.actual_weight >= e.target_weight
		                         AND l.actual_reps >= e.target_reps)::int
		 FROM set_logs l
		 JOIN exercises e ON e.id = l.exercise_id
		 WHERE l.logged_at >= $2 AND l.logged_at < $3
		 GROUP BY period
		 ORDER BY period DESC`,
		interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume summary: %w", err)
	}
	defer volumeRows.Close()

	for volumeRows.Next() {
		var periodTime time.Time
		var v VolumeSummary
		if err := volumeRows.Scan(&periodTime, &v.Sets, &v.TotalReps, &v.Tonnage, &v.Sessions, &v.TargetsMet); err != nil {
			return nil, fmt.Errorf("scanning volume summary: %w", err)
		}
		if v.Sessions > 0 {
			v.AvgSetsPerSession = float64(v.Sets) / float64(v.Sessions)
		}
		acc.get(periodTime).Volume = &v
	}
	if err := volumeRows.Err(); err != nil {
		return nil, err
	}

	return acc.result(), nil
}

// periodAccumulator keeps periods in first-seen order.
type periodAccumulator struct {
	byKey map[string]*TrainingSummaryPeriod
	order []string
}

func newPeriodAccumulator() *periodAccumulator {
	return &periodAccumulator{byKey: make(map[string]*TrainingSummaryPeriod)}
}

func (a *periodAccumulator) get(t time.Time) *TrainingSummaryPeriod {
	key := t.Format(DateLayout)
	p, ok := a.byKey[key]
	if !ok {
		p = &TrainingSummaryPeriod{Period: key, Workouts: []WorkoutPeriodSummary{}}
		a.byKey[key] = p
		a.order = append(a.order, key)
	}
	return p
}

func (a *periodAccumulator) result() []TrainingSummaryPeriod {
	result := make([]TrainingSummaryPeriod, 0, len(a.order))
	for _, key := range a.order {
		result = append(result, *a.byKey[key])
	}
	return result
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 day", "day":
		return "day"
	case "1 week", "week":
		return "week"
	case "1 month", "month":
		return "month"
	default:
		return "month"
	}
}
