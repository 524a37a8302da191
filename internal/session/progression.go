package session

import "github.com/claude/lightweight/internal/models"

// Progression tracks the position within a session's ordered exercise list.
// It is not safe for concurrent use.
type Progression struct {
	exercises []models.Exercise
	index     int
}

// NewProgression copies the exercise list and starts at the first exercise.
func NewProgression(exercises []models.Exercise) *Progression {
	return &Progression{exercises: append([]models.Exercise(nil), exercises...)}
}

// Current returns the active exercise.
func (p *Progression) Current() (models.Exercise, error) {
	if len(p.exercises) == 0 {
		return models.Exercise{}, ErrNoActiveExercise
	}
	return p.exercises[p.index], nil
}

// Advance moves to the next exercise. On the last exercise it returns
// ErrSessionFinished and leaves the index unchanged.
func (p *Progression) Advance() error {
	if p.index >= len(p.exercises)-1 {
		return ErrSessionFinished
	}
	p.index++
	return nil
}

// ReplaceCurrent renames the active exercise for the rest of this session.
// Targets, video reference and the stored record are untouched.
func (p *Progression) ReplaceCurrent(name string) error {
	if len(p.exercises) == 0 {
		return ErrNoActiveExercise
	}
	p.exercises[p.index].Name = name
	return nil
}

func (p *Progression) Index() int { return p.index }
func (p *Progression) Len() int   { return len(p.exercises) }

// Exercises returns a copy of the in-memory list, including substitutions.
func (p *Progression) Exercises() []models.Exercise {
	return append([]models.Exercise(nil), p.exercises...)
}
