package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of a scheduled date.
const DateLayout = "2006-01-02"

// CommitmentWithWorkout is a commitment joined with its workout label.
type CommitmentWithWorkout struct {
	models.Commitment
	Workout models.WorkoutLabel `json:"workout"`
}

// InsertCommitment schedules a workout on a date.
func (db *DB) InsertCommitment(ctx context.Context, c models.Commitment) (*models.Commitment, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.ScheduledDate = truncateDay(c.ScheduledDate)
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO commitments (id, workout_id, scheduled_date, note, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.WorkoutID, c.ScheduledDate, c.Note, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting commitment: %w", err)
	}
	return &c, nil
}

// ListCommitments returns commitments in a date range [from, to), earliest first.
// Zero bounds leave that side open.
func (db *DB) ListCommitments(ctx context.Context, from, to time.Time) ([]CommitmentWithWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.workout_id, c.scheduled_date, c.note, c.created_at, w.name, w.color
		 FROM commitments c
		 JOIN workouts w ON w.id = c.workout_id
		 WHERE ($1::date IS NULL OR c.scheduled_date >= $1::date)
		   AND ($2::date IS NULL OR c.scheduled_date < $2::date)
		 ORDER BY c.scheduled_date ASC, c.created_at ASC`,
		nullableDate(from), nullableDate(to))
	if err != nil {
		return nil, fmt.Errorf("querying commitments: %w", err)
	}
	defer rows.Close()

	var result []CommitmentWithWorkout
	for rows.Next() {
		var c CommitmentWithWorkout
		if err := rows.Scan(&c.ID, &c.WorkoutID, &c.ScheduledDate, &c.Note, &c.CreatedAt,
			&c.Workout.Name, &c.Workout.Color); err != nil {
			return nil, fmt.Errorf("scanning commitment: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetCommitment retrieves one commitment by ID.
func (db *DB) GetCommitment(ctx context.Context, id uuid.UUID) (*models.Commitment, error) {
	var c models.Commitment
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, scheduled_date, note, created_at FROM commitments WHERE id = $1`, id,
	).Scan(&c.ID, &c.WorkoutID, &c.ScheduledDate, &c.Note, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "commitment")
	}
	return &c, nil
}

// DeleteCommitment removes a commitment.
func (db *DB) DeleteCommitment(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM commitments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting commitment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("commitment: %w", ErrNotFound)
	}
	return nil
}

// StartCommitment opens a session for the commitment's workout.
func (db *DB) StartCommitment(ctx context.Context, id uuid.UUID, at time.Time) (*models.SessionLog, error) {
	c, err := db.GetCommitment(ctx, id)
	if err != nil {
		return nil, err
	}
	return db.StartSession(ctx, c.WorkoutID, at)
}

// CalendarDay groups what happened or is planned on one day of a month.
type CalendarDay struct {
	Date              string                  `json:"date"`
	Commitments       []CommitmentWithWorkout `json:"commitments"`
	CompletedSessions int                     `json:"completed_sessions"`
}

// MonthCalendar returns one entry per day of the month with commitments and completed sessions.
func (db *DB) MonthCalendar(ctx context.Context, year int, month time.Month) ([]CalendarDay, error) {
	from, to := MonthBounds(year, month)

	commitments, err := db.ListCommitments(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT completed_at::date, COUNT(*)::int
		 FROM session_logs
		 WHERE completed_at >= $1 AND completed_at < $2
		 GROUP BY 1`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("querying completed sessions: %w", err)
	}
	defer rows.Close()

	completed := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scanning completed sessions: %w", err)
		}
		completed[day.Format(DateLayout)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return BuildMonthCalendar(year, month, commitments, completed), nil
}

// BuildMonthCalendar lays commitments and completion counts out over every day of the month.
func BuildMonthCalendar(year int, month time.Month, commitments []CommitmentWithWorkout, completed map[string]int) []CalendarDay {
	from, to := MonthBounds(year, month)
	byDay := make(map[string][]CommitmentWithWorkout)
	for _, c := range commitments {
		key := c.ScheduledDate.Format(DateLayout)
		byDay[key] = append(byDay[key], c)
	}

	var days []CalendarDay
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		cs := byDay[key]
		if cs == nil {
			cs = []CommitmentWithWorkout{}
		}
		days = append(days, CalendarDay{Date: key, Commitments: cs, CompletedSessions: completed[key]})
	}
	return days
}

// MonthBounds returns the first day of the month and the first day of the next month, in UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	d := truncateDay(t)
	return &d
}
