package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/claude/lightweight/internal/session"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.workout))
	b.WriteString("\n\n")

	switch {
	case m.startErr != nil:
		b.WriteString(errorStyle.Render("Could not load the session: " + m.startErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter quit"))
	case m.snap.State == session.StateLoading:
		b.WriteString(dimStyle.Render("Loading exercises..."))
	case m.snap.State == session.StateCompleted:
		b.WriteString(m.renderCompleted())
	default:
		b.WriteString(m.renderActive())
	}

	return b.String() + "\n"
}

func (m Model) renderActive() string {
	var b strings.Builder
	s := m.snap

	timer := timerStyle
	if s.EndingSoon {
		timer = timerEndingStyle
	}
	b.WriteString(timer.Render(formatClock(s.Remaining)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("of %s", formatClock(s.Duration))))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(s.Progress))
	b.WriteString("\n")

	if s.Alert != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(s.Alert))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if s.HasExercise {
		b.WriteString(cardStyle.Render(m.renderCard()))
		b.WriteString("\n\n")
	}

	if m.replacing {
		b.WriteString(labelStyle.Render("Replace") + m.replace.View())
	} else {
		b.WriteString(labelStyle.Render("Weight") + m.weight.View() + " " + dimStyle.Render(m.unit))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Reps") + m.reps.View())
	}
	b.WriteString("\n")

	if s.Feedback != nil {
		b.WriteString("\n")
		b.WriteString(feedbackLine(*s.Feedback, m.unit))
		b.WriteString("\n")
	}
	if m.inputErr != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(inputErrorText(m.inputErr)))
		b.WriteString("\n")
	}
	if s.Notice != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Not saved: " + s.Notice.Error()))
		b.WriteString(dimStyle.Render("  (ctrl+n dismiss)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Today's flow"))
	b.WriteString("\n")
	b.WriteString(m.renderFlow())

	b.WriteString("\n")
	if m.replacing {
		b.WriteString(helpStyle.Render("enter save • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("tab switch • enter log set • ctrl+r replace exercise • + add a minute • esc quit"))
	}
	return b.String()
}

func (m Model) renderCard() string {
	ex := m.snap.Exercise
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("Exercise %d of %d", m.snap.Index+1, m.snap.Total)))
	b.WriteString("\n")
	b.WriteString(exerciseStyle.Render(ex.Name))
	if ex.Focus != "" {
		b.WriteString("  " + dimStyle.Render(ex.Focus))
	}
	b.WriteString("\n")
	b.WriteString("Target: " + formatTarget(ex.TargetWeight, ex.TargetReps, m.unit))
	if ex.VideoURL != nil && *ex.VideoURL != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Video: " + *ex.VideoURL))
	}
	return b.String()
}

func (m Model) renderFlow() string {
	var b strings.Builder
	s := m.snap
	for i, ex := range s.Exercises {
		done := i < s.Index || (s.State == session.StateCompleted && !s.Expired)
		switch {
		case done:
			b.WriteString(doneMarkStyle.Render("✓ ") + dimStyle.Render(ex.Name))
		case i == s.Index && s.State == session.StateActive:
			b.WriteString(currentMarkStyle.Render("▶ " + ex.Name))
		default:
			b.WriteString(dimStyle.Render("· " + ex.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCompleted() string {
	var b strings.Builder
	s := m.snap

	switch {
	case s.Total == 0:
		b.WriteString(dimStyle.Render("This workout has no exercises."))
	case s.Expired:
		b.WriteString(titleStyle.Render("Time's up. Protocol complete."))
	default:
		b.WriteString(titleStyle.Render("Protocol complete."))
	}
	b.WriteString("\n")
	if s.Total > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Time on the clock: %s", formatClock(s.Remaining))))
		b.WriteString("\n\n")
		b.WriteString(m.renderFlow())
	}
	if s.Notice != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Not saved: " + s.Notice.Error()))
		b.WriteString("\n")
	}
	if !m.finished {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Saving..."))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("waiting for the service"))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter quit"))
	return b.String()
}

func feedbackLine(fb session.Feedback, unit string) string {
	msg := fb.Message(unit)
	switch fb.Outcome {
	case session.OutcomeExceeded:
		return exceededStyle.Render(msg)
	case session.OutcomeMissed:
		return missedStyle.Render(msg)
	default:
		return metStyle.Render(msg)
	}
}

func inputErrorText(err error) string {
	if errors.Is(err, session.ErrAdvancePending) {
		return "Hold on, moving to the next exercise."
	}
	return err.Error()
}

// formatClock renders seconds as m:ss.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatTarget(weight float64, reps int, unit string) string {
	if weight == 0 {
		return fmt.Sprintf("bodyweight × %d", reps)
	}
	return fmt.Sprintf("%g %s × %d", weight, unit, reps)
}
