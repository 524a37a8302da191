package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// InsertWorkout creates a workout. ID and CreatedAt are assigned when zero.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (*models.Workout, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	if w.Color == "" {
		w.Color = DefaultWorkoutColor
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, name, description, color, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.Name, w.Description, w.Color, w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	return &w, nil
}

// DefaultWorkoutColor is used when a workout is created without a color.
const DefaultWorkoutColor = "#7c3aed"

// ListWorkouts returns all workouts, oldest first.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, description, color, created_at
		 FROM workouts
		 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Color, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, description, color, created_at FROM workouts WHERE id = $1`, id,
	).Scan(&w.ID, &w.Name, &w.Description, &w.Color, &w.CreatedAt)
	if err != nil {
		return nil, notFound(err, "workout")
	}
	return &w, nil
}

// DeleteWorkout removes a workout together with its exercises, sessions and commitments.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("workout: %w", ErrNotFound)
	}
	return nil
}
