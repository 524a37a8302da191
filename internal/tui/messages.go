package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/lightweight/internal/session"
)

// Message types for async runtime operations
type (
	// startedMsg reports the result of loading the exercise list.
	startedMsg struct {
		Err error
	}

	// changedMsg signals that the runtime snapshot may have changed.
	changedMsg struct{}

	// doneMsg signals that the runtime reached its terminal state or was torn down.
	doneMsg struct{}

	// loggedMsg carries the result of a set log.
	loggedMsg struct {
		Feedback session.Feedback
		Err      error
	}
)

func startCmd(ctx context.Context, rt Runtime) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{Err: rt.Start(ctx)}
	}
}

// waitForChange blocks until the runtime publishes a change or finishes.
func waitForChange(rt Runtime) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-rt.Updates():
			return changedMsg{}
		case <-rt.Done():
			return doneMsg{}
		}
	}
}

func logSetCmd(ctx context.Context, rt Runtime, weight, reps string) tea.Cmd {
	return func() tea.Msg {
		fb, err := rt.LogSet(ctx, weight, reps)
		return loggedMsg{Feedback: fb, Err: err}
	}
}
