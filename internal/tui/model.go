package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/lightweight/internal/session"
)

// extendSeconds is added to the clock by the "+" key.
const extendSeconds = 60

// Runtime is the part of session.Controller the screen drives.
type Runtime interface {
	Start(ctx context.Context) error
	Snapshot() session.Snapshot
	LogSet(ctx context.Context, weight, reps string) (session.Feedback, error)
	ReplaceCurrentExercise(name string) error
	ExtendTime(seconds int) error
	DismissNotice()
	Teardown()
	Done() <-chan struct{}
	Updates() <-chan struct{}
}

var _ Runtime = (*session.Controller)(nil)

type inputField int

const (
	weightField inputField = iota
	repsField
)

// Model is the bubbletea model of the session screen.
type Model struct {
	ctx     context.Context
	rt      Runtime
	workout string
	unit    string

	snap     session.Snapshot
	startErr error
	inputErr error
	finished bool
	logging  bool

	weight    textinput.Model
	reps      textinput.Model
	focus     inputField
	replacing bool
	replace   textinput.Model
	bar       progress.Model

	width int
}

// New builds the screen for a runtime that has not been started yet.
func New(ctx context.Context, rt Runtime, workout, unit string) Model {
	weight := textinput.New()
	weight.Placeholder = "0"
	weight.CharLimit = 8
	weight.Width = 8
	weight.Focus()

	reps := textinput.New()
	reps.Placeholder = "0"
	reps.CharLimit = 4
	reps.Width = 4

	replace := textinput.New()
	replace.Placeholder = "exercise name"
	replace.CharLimit = 64
	replace.Width = 32

	return Model{
		ctx:     ctx,
		rt:      rt,
		workout: workout,
		unit:    unit,
		snap:    rt.Snapshot(),
		weight:  weight,
		reps:    reps,
		replace: replace,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(startCmd(m.ctx, m.rt), waitForChange(m.rt), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 8; w > 10 && w < 60 {
			m.bar.Width = w
		}
		return m, nil

	case startedMsg:
		m.startErr = msg.Err
		m.snap = m.rt.Snapshot()
		return m, nil

	case changedMsg:
		m.snap = m.rt.Snapshot()
		return m, waitForChange(m.rt)

	case doneMsg:
		m.snap = m.rt.Snapshot()
		m.finished = true
		if m.snap.TornDown {
			return m, tea.Quit
		}
		return m, nil

	case loggedMsg:
		m.logging = false
		m.snap = m.rt.Snapshot()
		var inErr *session.InputError
		switch {
		case msg.Err == nil:
			m.inputErr = nil
			m.resetInputs()
		case errors.As(msg.Err, &inErr), errors.Is(msg.Err, session.ErrAdvancePending):
			m.inputErr = msg.Err
		default:
			// The set counted; the failed write is shown as the runtime notice.
			m.inputErr = nil
			m.resetInputs()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.rt.Teardown()
		return m, tea.Quit
	}

	// Hold the completed screen until the completion write resolves.
	if m.startErr == nil && !m.finished && m.snap.State == session.StateCompleted {
		return m, nil
	}

	if m.startErr != nil || m.finished || m.snap.State == session.StateCompleted {
		switch msg.String() {
		case "enter", "esc", "q":
			m.rt.Teardown()
			return m, tea.Quit
		}
		return m, nil
	}

	if m.replacing {
		switch msg.String() {
		case "esc":
			m.replacing = false
			m.replace.Blur()
			m.focusField(m.focus)
			return m, nil
		case "enter":
			if err := m.rt.ReplaceCurrentExercise(m.replace.Value()); err != nil {
				m.inputErr = err
				return m, nil
			}
			m.inputErr = nil
			m.replacing = false
			m.replace.Blur()
			m.focusField(m.focus)
			m.snap = m.rt.Snapshot()
			return m, nil
		}
		var cmd tea.Cmd
		m.replace, cmd = m.replace.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.rt.Teardown()
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == weightField {
			m.focusField(repsField)
		} else {
			m.focusField(weightField)
		}
		return m, nil

	case "enter":
		if m.logging || m.snap.State != session.StateActive {
			return m, nil
		}
		m.logging = true
		return m, logSetCmd(m.ctx, m.rt, m.weight.Value(), m.reps.Value())

	case "ctrl+r":
		if !m.snap.HasExercise {
			return m, nil
		}
		m.replacing = true
		m.replace.SetValue(m.snap.Exercise.Name)
		m.replace.CursorEnd()
		m.weight.Blur()
		m.reps.Blur()
		return m, m.replace.Focus()

	case "ctrl+n":
		m.rt.DismissNotice()
		m.snap = m.rt.Snapshot()
		return m, nil

	case "+":
		if err := m.rt.ExtendTime(extendSeconds); err != nil {
			m.inputErr = err
		}
		m.snap = m.rt.Snapshot()
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var wCmd, rCmd tea.Cmd
	m.weight, wCmd = m.weight.Update(msg)
	m.reps, rCmd = m.reps.Update(msg)
	return m, tea.Batch(wCmd, rCmd)
}

func (m *Model) focusField(f inputField) {
	m.focus = f
	if f == weightField {
		m.weight.Focus()
		m.reps.Blur()
	} else {
		m.reps.Focus()
		m.weight.Blur()
	}
}

func (m *Model) resetInputs() {
	m.weight.Reset()
	m.reps.Reset()
	m.focusField(weightField)
}

// Run shows the session screen until the session ends or the user quits.
// The runtime is torn down on return, after any completion write in flight
// has resolved or ctx is cancelled.
func Run(ctx context.Context, rt Runtime, workout, unit string) (session.Snapshot, error) {
	p := tea.NewProgram(New(ctx, rt, workout, unit), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	rt.Teardown()
	select {
	case <-rt.Done():
	case <-ctx.Done():
	}
	if err != nil {
		return rt.Snapshot(), fmt.Errorf("running session screen: %w", err)
	}
	if m, ok := final.(Model); ok && m.startErr != nil {
		return m.snap, m.startErr
	}
	return rt.Snapshot(), nil
}
