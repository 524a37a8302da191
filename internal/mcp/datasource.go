package mcp

import (
	"context"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and client.HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	ListExercises(ctx context.Context, workoutID uuid.UUID) ([]models.Exercise, error)
	SessionHistory(ctx context.Context, limit int) ([]storage.SessionWithSets, error)
	RecentSessions(ctx context.Context, limit int) ([]storage.SessionSummary, error)
	ExerciseProgress(ctx context.Context, name string, limit int) ([]storage.ProgressPoint, error)
	ListCommitments(ctx context.Context, from, to time.Time) ([]storage.CommitmentWithWorkout, error)
	MonthCalendar(ctx context.Context, year int, month time.Month) ([]storage.CalendarDay, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
	GetDataStats(ctx context.Context, today time.Time) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
