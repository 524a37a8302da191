package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/storage"
	"github.com/google/uuid"
)

// memRepo is an in-memory Repository for handler tests.
type memRepo struct {
	mu          sync.Mutex
	pingErr     error
	workouts    map[uuid.UUID]models.Workout
	exercises   map[uuid.UUID]models.Exercise
	sessions    map[uuid.UUID]models.SessionLog
	setLogs     map[uuid.UUID]models.SetLog
	commitments map[uuid.UUID]models.Commitment
}

func newMemRepo() *memRepo {
	return &memRepo{
		workouts:    make(map[uuid.UUID]models.Workout),
		exercises:   make(map[uuid.UUID]models.Exercise),
		sessions:    make(map[uuid.UUID]models.SessionLog),
		setLogs:     make(map[uuid.UUID]models.SetLog),
		commitments: make(map[uuid.UUID]models.Commitment),
	}
}

func notFound(what string) error { return fmt.Errorf("%s: %w", what, storage.ErrNotFound) }

func (m *memRepo) Ping(context.Context) error { return m.pingErr }

func (m *memRepo) ListWorkouts(context.Context) ([]models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Workout
	for _, w := range m.workouts {
		out = append(out, w)
	}
	return out, nil
}

func (m *memRepo) GetWorkout(_ context.Context, id uuid.UUID) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok {
		return nil, notFound("workout")
	}
	return &w, nil
}

func (m *memRepo) InsertWorkout(_ context.Context, w models.Workout) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Color == "" {
		w.Color = storage.DefaultWorkoutColor
	}
	m.workouts[w.ID] = w
	return &w, nil
}

func (m *memRepo) DeleteWorkout(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workouts[id]; !ok {
		return notFound("workout")
	}
	delete(m.workouts, id)
	return nil
}

func (m *memRepo) ListExercises(_ context.Context, workoutID uuid.UUID) ([]models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Exercise
	for _, e := range m.exercises {
		if e.WorkoutID == workoutID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) GetExercise(_ context.Context, id uuid.UUID) (*models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exercises[id]
	if !ok {
		return nil, notFound("exercise")
	}
	return &e, nil
}

func (m *memRepo) InsertExercise(_ context.Context, e models.Exercise) (*models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OrderIndex < 0 {
		next := 0
		for _, x := range m.exercises {
			if x.WorkoutID == e.WorkoutID && x.OrderIndex >= next {
				next = x.OrderIndex + 1
			}
		}
		e.OrderIndex = next
	}
	m.exercises[e.ID] = e
	return &e, nil
}

func (m *memRepo) UpdateExercise(_ context.Context, e models.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[e.ID]; !ok {
		return notFound("exercise")
	}
	m.exercises[e.ID] = e
	return nil
}

func (m *memRepo) DeleteExercise(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exercises[id]; !ok {
		return notFound("exercise")
	}
	delete(m.exercises, id)
	return nil
}

func (m *memRepo) StartSession(_ context.Context, workoutID uuid.UUID, at time.Time) (*models.SessionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := models.SessionLog{ID: uuid.New(), WorkoutID: workoutID, StartedAt: at.UTC()}
	m.sessions[s.ID] = s
	return &s, nil
}

func (m *memRepo) GetSession(_ context.Context, id uuid.UUID) (*models.SessionLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, notFound("session")
	}
	return &s, nil
}

func (m *memRepo) CompleteSession(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return notFound("session")
	}
	if s.CompletedAt == nil {
		t := at.UTC()
		s.CompletedAt = &t
		m.sessions[id] = s
	}
	return nil
}

func (m *memRepo) RecentSessions(_ context.Context, limit int) ([]storage.SessionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.SessionSummary
	for _, s := range m.sessions {
		if len(out) == limit {
			break
		}
		w := m.workouts[s.WorkoutID]
		out = append(out, storage.SessionSummary{SessionLog: s, Workout: models.WorkoutLabel{Name: w.Name, Color: w.Color}})
	}
	return out, nil
}

func (m *memRepo) SessionHistory(ctx context.Context, limit int) ([]storage.SessionWithSets, error) {
	sessions, _ := m.RecentSessions(ctx, limit)
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.SessionWithSets
	for _, s := range sessions {
		sw := storage.SessionWithSets{SessionSummary: s, Sets: []storage.LoggedSet{}}
		for _, l := range m.setLogs {
			if l.SessionLogID == s.ID {
				sw.Sets = append(sw.Sets, storage.LoggedSet{SetLog: l, ExerciseName: m.exercises[l.ExerciseID].Name})
			}
		}
		out = append(out, sw)
	}
	return out, nil
}

func (m *memRepo) InsertSetLog(_ context.Context, l models.SetLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.setLogs[l.ID]; !ok {
		m.setLogs[l.ID] = l
	}
	return nil
}

func (m *memRepo) CountSetLogs(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.setLogs {
		if l.SessionLogID == id {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ExerciseProgress(context.Context, string, int) ([]storage.ProgressPoint, error) {
	return nil, nil
}

func (m *memRepo) ListCommitments(context.Context, time.Time, time.Time) ([]storage.CommitmentWithWorkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.CommitmentWithWorkout
	for _, c := range m.commitments {
		w := m.workouts[c.WorkoutID]
		out = append(out, storage.CommitmentWithWorkout{Commitment: c, Workout: models.WorkoutLabel{Name: w.Name, Color: w.Color}})
	}
	return out, nil
}

func (m *memRepo) InsertCommitment(_ context.Context, c models.Commitment) (*models.Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.commitments[c.ID] = c
	return &c, nil
}

func (m *memRepo) DeleteCommitment(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.commitments[id]; !ok {
		return notFound("commitment")
	}
	delete(m.commitments, id)
	return nil
}

func (m *memRepo) StartCommitment(ctx context.Context, id uuid.UUID, at time.Time) (*models.SessionLog, error) {
	m.mu.Lock()
	c, ok := m.commitments[id]
	m.mu.Unlock()
	if !ok {
		return nil, notFound("commitment")
	}
	return m.StartSession(ctx, c.WorkoutID, at)
}

func (m *memRepo) MonthCalendar(_ context.Context, year int, month time.Month) ([]storage.CalendarDay, error) {
	return storage.BuildMonthCalendar(year, month, nil, nil), nil
}

func (m *memRepo) GetDataStats(context.Context, time.Time) (*storage.DataStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &storage.DataStats{
		TotalWorkouts: int64(len(m.workouts)),
		TotalSessions: int64(len(m.sessions)),
		TotalSets:     int64(len(m.setLogs)),
	}, nil
}

func (m *memRepo) GetTrainingSummary(context.Context, time.Time, time.Time, string) ([]storage.TrainingSummaryPeriod, error) {
	return nil, errors.New("summary unavailable")
}
