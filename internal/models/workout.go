package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout is a named program made of ordered exercises.
type Workout struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// Exercise is one movement of a workout with its target load.
// A TargetWeight of zero means bodyweight.
type Exercise struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	Name         string    `json:"name"`
	Focus        string    `json:"focus"`
	TargetWeight float64   `json:"target_weight"`
	TargetReps   int       `json:"target_reps"`
	VideoURL     *string   `json:"video_url"`
	OrderIndex   int       `json:"order_index"`
}

// SessionLog is one run of a workout. CompletedAt stays nil until the session ends.
type SessionLog struct {
	ID          uuid.UUID  `json:"id"`
	WorkoutID   uuid.UUID  `json:"workout_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Notes       *string    `json:"notes"`
}

// SetLog records the weight and reps actually performed for one exercise of a session.
type SetLog struct {
	ID           uuid.UUID `json:"id"`
	SessionLogID uuid.UUID `json:"session_log_id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ActualWeight float64   `json:"actual_weight"`
	ActualReps   int       `json:"actual_reps"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Commitment pairs a future date with a workout.
type Commitment struct {
	ID            uuid.UUID `json:"id"`
	WorkoutID     uuid.UUID `json:"workout_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Note          *string   `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkoutLabel is the subset of a workout shown next to sessions and commitments.
type WorkoutLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SessionDetail is a session with the number of sets already logged, which
// is what a client needs to resume it.
type SessionDetail struct {
	SessionLog
	SetCount int `json:"set_count"`
}
