package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/session"
	"github.com/google/uuid"
)

type memStore struct {
	mu        sync.Mutex
	exercises []models.Exercise
	sets      []models.SetLog
	completed int
	// hold, when set, blocks CompleteSession until it is closed.
	hold chan struct{}
}

func (s *memStore) ListExercises(context.Context, uuid.UUID) ([]models.Exercise, error) {
	return s.exercises, nil
}

func (s *memStore) InsertSetLog(_ context.Context, l models.SetLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets = append(s.sets, l)
	return nil
}

func (s *memStore) CompleteSession(context.Context, uuid.UUID, time.Time) error {
	if s.hold != nil {
		<-s.hold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	return nil
}

func newTestModel(t *testing.T, exercises ...models.Exercise) (Model, *session.Controller, *session.ManualScheduler, *memStore) {
	t.Helper()
	return newTestModelWithStore(t, &memStore{exercises: exercises})
}

func newTestModelWithStore(t *testing.T, store *memStore) (Model, *session.Controller, *session.ManualScheduler, *memStore) {
	t.Helper()
	sched := session.NewManualScheduler(time.Date(2026, 4, 14, 18, 0, 0, 0, time.UTC))
	opts := session.DefaultOptions(uuid.New(), uuid.New())
	opts.Scheduler = sched
	opts.WriteBackoff = 0
	ctrl := session.New(store, opts)
	t.Cleanup(ctrl.Teardown)

	m := New(context.Background(), ctrl, "Push Day", "kg")
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m = update(t, m, startedMsg{})
	return m, ctrl, sched, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// submit presses enter and feeds the resulting log message back in.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	return update(t, next.(Model), cmd())
}

var (
	bench  = models.Exercise{ID: uuid.New(), Name: "Bench Press", Focus: "Chest", TargetWeight: 100, TargetReps: 8}
	pushup = models.Exercise{ID: uuid.New(), Name: "Push-up", TargetReps: 15}
)

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{1800, "30:00"},
		{299, "4:59"},
		{5, "0:05"},
		{0, "0:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.seconds); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTarget(t *testing.T) {
	if got := formatTarget(0, 15, "kg"); got != "bodyweight × 15" {
		t.Errorf("bodyweight target = %q", got)
	}
	if got := formatTarget(62.5, 8, "lbs"); got != "62.5 lbs × 8" {
		t.Errorf("weighted target = %q", got)
	}
}

func TestActiveView(t *testing.T) {
	m, _, _, _ := newTestModel(t, bench, pushup)

	view := m.View()
	for _, want := range []string{"Push Day", "30:00", "Exercise 1 of 2", "Bench Press", "Chest", "100 kg × 8", "Today's flow", "▶ Bench Press", "· Push-up"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLogSetShowsFeedbackAndAdvances(t *testing.T) {
	m, ctrl, sched, store := newTestModel(t, bench, pushup)

	m = typeText(t, m, "105")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "8")
	m = submit(t, m)

	if !strings.Contains(m.View(), "Beast mode. +5.0kg over target.") {
		t.Errorf("feedback missing:\n%s", m.View())
	}
	if m.weight.Value() != "" || m.reps.Value() != "" || m.focus != weightField {
		t.Error("inputs not reset after a logged set")
	}
	if len(store.sets) != 1 {
		t.Fatalf("sets written = %d, want 1", len(store.sets))
	}

	sched.Advance(1200 * time.Millisecond)
	m = update(t, m, changedMsg{})
	if ctrl.Snapshot().Index != 1 || !strings.Contains(m.View(), "✓ Bench Press") {
		t.Errorf("did not advance:\n%s", m.View())
	}
}

func TestInputErrorShownInline(t *testing.T) {
	m, _, _, store := newTestModel(t, bench)

	m = submit(t, m)
	if !strings.Contains(m.View(), "weight is required") {
		t.Errorf("input error missing:\n%s", m.View())
	}
	if len(store.sets) != 0 {
		t.Errorf("invalid input wrote %d sets", len(store.sets))
	}
}

func TestExtendKey(t *testing.T) {
	m, ctrl, sched, _ := newTestModel(t, bench)

	sched.Advance(90 * time.Second)
	m = typeText(t, m, "+")
	if got := ctrl.Snapshot().Remaining; got != 1800-90+60 {
		t.Errorf("remaining = %d, want %d", got, 1800-90+60)
	}
	if m.weight.Value() != "" {
		t.Errorf("+ leaked into weight input: %q", m.weight.Value())
	}
}

func TestReplaceExercise(t *testing.T) {
	m, ctrl, _, _ := newTestModel(t, bench)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.replacing || m.replace.Value() != "Bench Press" {
		t.Fatalf("replace mode = %v, value %q", m.replacing, m.replace.Value())
	}
	m.replace.SetValue("Dumbbell Press")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.replacing {
		t.Error("still replacing after enter")
	}
	if got := ctrl.Snapshot().Exercise.Name; got != "Dumbbell Press" {
		t.Errorf("exercise = %q, want Dumbbell Press", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m.replace.SetValue("  ")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.replacing || !strings.Contains(m.View(), "exercise name is required") {
		t.Errorf("blank replacement accepted:\n%s", m.View())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.replacing || ctrl.Snapshot().TornDown {
		t.Error("esc should only leave replace mode")
	}
}

func TestEscTearsDown(t *testing.T) {
	m, ctrl, _, store := newTestModel(t, bench)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not quit")
	}
	if !ctrl.Snapshot().TornDown {
		t.Error("runtime not torn down")
	}
	if store.completed != 0 {
		t.Error("teardown must not complete the session")
	}
}

func TestCompletedView(t *testing.T) {
	m, ctrl, sched, store := newTestModel(t, pushup)

	m = typeText(t, m, "0")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "15")
	m = submit(t, m)
	sched.Advance(1200 * time.Millisecond)

	select {
	case <-ctrl.Done():
	default:
		t.Fatal("session not done")
	}
	m = update(t, m, doneMsg{})

	view := m.View()
	if !strings.Contains(view, "Protocol complete.") || !strings.Contains(view, "✓ Push-up") {
		t.Errorf("completed view:\n%s", view)
	}
	if store.completed != 1 {
		t.Errorf("completions = %d, want 1", store.completed)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on completed screen produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter on completed screen did not quit")
	}
}

func TestCompletedScreenWaitsForSave(t *testing.T) {
	hold := make(chan struct{})
	m, ctrl, sched, store := newTestModelWithStore(t, &memStore{exercises: []models.Exercise{pushup}, hold: hold})

	m = typeText(t, m, "0")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "15")
	m = submit(t, m)

	advanced := make(chan struct{})
	go func() {
		defer close(advanced)
		sched.Advance(1200 * time.Millisecond)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !ctrl.Snapshot().Saving {
		if time.Now().After(deadline) {
			t.Fatal("completion write never started")
		}
		time.Sleep(time.Millisecond)
	}
	m = update(t, m, changedMsg{})

	if !strings.Contains(m.View(), "Saving...") {
		t.Errorf("completed view while saving:\n%s", m.View())
	}
	for _, key := range []tea.KeyMsg{{Type: tea.KeyEnter}, {Type: tea.KeyEsc}, {Type: tea.KeyRunes, Runes: []rune("q")}} {
		next, cmd := m.Update(key)
		m = next.(Model)
		if cmd != nil {
			if _, ok := cmd().(tea.QuitMsg); ok {
				t.Errorf("%s quit before the completion was saved", key)
			}
		}
	}
	if ctrl.Snapshot().TornDown {
		t.Error("runtime torn down while saving")
	}

	close(hold)
	<-advanced
	<-ctrl.Done()
	m = update(t, m, doneMsg{})
	if store.completed != 1 {
		t.Errorf("completions = %d, want 1", store.completed)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter after save produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter after save did not quit")
	}
}

func TestWaitForChange(t *testing.T) {
	_, ctrl, _, _ := newTestModel(t, bench)

	// Start published a change that nobody consumed yet.
	if _, ok := waitForChange(ctrl)().(changedMsg); !ok {
		t.Error("expected changedMsg")
	}
	ctrl.Teardown()
	if _, ok := waitForChange(ctrl)().(doneMsg); !ok {
		t.Error("expected doneMsg after teardown")
	}
}
