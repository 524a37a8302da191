package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/lightweight/internal/ingest"
	"github.com/claude/lightweight/internal/models"
)

// Writer is the storage surface an import needs. *storage.DB implements it.
type Writer interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	InsertWorkout(ctx context.Context, w models.Workout) (*models.Workout, error)
	InsertExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error)
}

// Provider turns Alpha Progression CSV exports into workout templates.
type Provider struct {
	db  Writer
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(db Writer, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and creates a workout for every session name not
// already stored. Existing workouts are left untouched and reported as skipped.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	existing, err := p.db.ListWorkouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, w := range existing {
		known[strings.ToLower(w.Name)] = true
	}

	result := &ingest.Result{SessionsParsed: len(sessions)}
	for _, plan := range BuildPlans(sessions) {
		if known[strings.ToLower(plan.Workout.Name)] {
			result.Skipped = append(result.Skipped, plan.Workout.Name)
			continue
		}
		w, err := p.db.InsertWorkout(ctx, plan.Workout)
		if err != nil {
			return nil, fmt.Errorf("inserting workout %q: %w", plan.Workout.Name, err)
		}
		result.WorkoutsCreated++
		for _, e := range plan.Exercises {
			e.WorkoutID = w.ID
			if _, err := p.db.InsertExercise(ctx, e); err != nil {
				return nil, fmt.Errorf("inserting exercise %q: %w", e.Name, err)
			}
			result.ExercisesCreated++
		}
		p.log.Info("workout imported", "id", w.ID, "name", w.Name, "exercises", len(plan.Exercises))
	}

	if result.WorkoutsCreated == 0 && len(sessions) > 0 {
		result.Message = "all workouts already exist"
	}
	return result, nil
}
