package storage

import (
	"context"
	"fmt"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// DefaultTargetReps is used when an exercise is created without a rep target.
const DefaultTargetReps = 8

// nextOrderIndexQuery places a new exercise after the highest position in
// use, so positions left by deletes are never handed out twice.
const nextOrderIndexQuery = `SELECT COALESCE(MAX(order_index) + 1, 0)::int FROM exercises WHERE workout_id = $1`

// ListExercises returns a workout's exercises in their stored order.
func (db *DB) ListExercises(ctx context.Context, workoutID uuid.UUID) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, name, focus, target_weight, target_reps, video_url, order_index
		 FROM exercises
		 WHERE workout_id = $1
		 ORDER BY order_index ASC, name ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// GetExercise retrieves one exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, workout_id, name, focus, target_weight, target_reps, video_url, order_index
		 FROM exercises WHERE id = $1`, id,
	).Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Focus, &e.TargetWeight, &e.TargetReps, &e.VideoURL, &e.OrderIndex)
	if err != nil {
		return nil, notFound(err, "exercise")
	}
	return &e, nil
}

// InsertExercise appends an exercise to its workout. When OrderIndex is negative the
// exercise is placed after the current last one.
func (db *DB) InsertExercise(ctx context.Context, e models.Exercise) (*models.Exercise, error) {
	if err := ValidateExercise(e); err != nil {
		return nil, err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OrderIndex < 0 {
		err := db.Pool.QueryRow(ctx, nextOrderIndexQuery, e.WorkoutID).Scan(&e.OrderIndex)
		if err != nil {
			return nil, fmt.Errorf("finding next position: %w", err)
		}
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, workout_id, name, focus, target_weight, target_reps, video_url, order_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.WorkoutID, e.Name, e.Focus, e.TargetWeight, e.TargetReps, e.VideoURL, e.OrderIndex)
	if err != nil {
		return nil, fmt.Errorf("inserting exercise: %w", err)
	}
	return &e, nil
}

// UpdateExercise rewrites the editable fields of an exercise. The owning workout and
// position are left unchanged.
func (db *DB) UpdateExercise(ctx context.Context, e models.Exercise) error {
	if err := ValidateExercise(e); err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises
		 SET name = $2, focus = $3, target_weight = $4, target_reps = $5, video_url = $6
		 WHERE id = $1`,
		e.ID, e.Name, e.Focus, e.TargetWeight, e.TargetReps, e.VideoURL)
	if err != nil {
		return fmt.Errorf("updating exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("exercise: %w", ErrNotFound)
	}
	return nil
}

// DeleteExercise removes an exercise and the set logs recorded against it.
func (db *DB) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("exercise: %w", ErrNotFound)
	}
	return nil
}

// ValidateExercise checks the fields the schema constrains.
func ValidateExercise(e models.Exercise) error {
	if e.Name == "" {
		return fmt.Errorf("exercise name is required")
	}
	if e.TargetReps <= 0 {
		return fmt.Errorf("exercise target reps must be positive, got %d", e.TargetReps)
	}
	if e.TargetWeight < 0 {
		return fmt.Errorf("exercise target weight must not be negative, got %g", e.TargetWeight)
	}
	return nil
}

func scanExercises(rows rowScanner) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Focus, &e.TargetWeight,
			&e.TargetReps, &e.VideoURL, &e.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
