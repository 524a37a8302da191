package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveExercise is returned when the exercise list is empty.
	ErrNoActiveExercise = errors.New("no active exercise")
	// ErrSessionFinished is returned by Progression.Advance on the last exercise.
	ErrSessionFinished = errors.New("session finished")
	// ErrSessionCompleted is returned when input arrives after the terminal state.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrNotStarted is returned when input arrives before the exercise list is loaded.
	ErrNotStarted = errors.New("session not started")
	// ErrAdvancePending is returned when a set is logged while the previous one
	// is still being shown.
	ErrAdvancePending = errors.New("previous set still pending")
	// ErrTornDown is returned once the runtime has been torn down.
	ErrTornDown = errors.New("session torn down")
)

// InputError reports a weight or reps value that could not be parsed.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// PersistenceError reports a write to the data service that failed after all
// retry attempts. In-memory progression is kept.
type PersistenceError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// permanentError is implemented by store errors that retrying cannot fix,
// such as a rejected request.
type permanentError interface {
	Permanent() bool
}

func isPermanent(err error) bool {
	var pe permanentError
	return errors.As(err, &pe) && pe.Permanent()
}
