package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/claude/lightweight/internal/session"
	"github.com/claude/lightweight/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// errSessionCompleted is returned when resuming a session that already ended.
var errSessionCompleted = errors.New("session already completed")

func newSessionCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run a timed workout session in the terminal",
	}
	cmd.AddCommand(newSessionStartCommand(a), newSessionResumeCommand(a))
	return cmd
}

func newSessionStartCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start <workout-id>",
		Short: "Start a new session of a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutID, err := parseID("workout", args[0])
			if err != nil {
				return err
			}
			sess, err := a.api.StartSession(cmd.Context(), workoutID, a.now())
			if err != nil {
				return fmt.Errorf("failed to start session: %w", err)
			}
			return a.runSession(cmd, *sess, nil)
		},
	}
}

func newSessionResumeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume [session-id]",
		Short: "Resume an interrupted session (defaults to the last one started here)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uuid.UUID
			if len(args) == 1 {
				parsed, err := parseID("session", args[0])
				if err != nil {
					return err
				}
				id = parsed
			} else {
				sid, _, ok, err := a.settings.ActiveSession()
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no interrupted session to resume")
				}
				id = sid
			}

			detail, err := a.api.GetSession(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}
			resume, err := resumeFrom(*detail, a.now())
			if err != nil {
				if errors.Is(err, errSessionCompleted) {
					_ = a.settings.ClearActiveSession()
				}
				return err
			}
			return a.runSession(cmd, detail.SessionLog, resume)
		},
	}
}

// resumeFrom derives the restored clock and position from persisted state:
// elapsed time since started_at and the number of sets already logged.
func resumeFrom(d models.SessionDetail, now time.Time) (*session.Resume, error) {
	if d.CompletedAt != nil {
		return nil, fmt.Errorf("%s: %w", d.ID, errSessionCompleted)
	}
	elapsed := now.Sub(d.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return &session.Resume{StartedAt: d.StartedAt, Elapsed: elapsed, Logged: d.SetCount}, nil
}

func (a *app) runSession(cmd *cobra.Command, sess models.SessionLog, resume *session.Resume) error {
	ctx := cmd.Context()

	workout, err := a.api.GetWorkout(ctx, sess.WorkoutID)
	if err != nil {
		return fmt.Errorf("failed to load workout: %w", err)
	}
	unit, err := a.settings.Unit()
	if err != nil {
		return err
	}
	if err := a.settings.SetActiveSession(sess.ID, sess.WorkoutID); err != nil {
		return err
	}

	log, closeLog := a.sessionLogger()
	defer closeLog()

	opts := session.ConfigOptions(a.cfg.Session, sess.ID, sess.WorkoutID)
	opts.Resume = resume
	opts.Logger = log
	ctrl := session.New(a.api, opts)

	snap, err := tui.Run(ctx, ctrl, workout.Name, unit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case snap.State == session.StateCompleted && snap.Notice == nil && !snap.Saving:
		if err := a.settings.ClearActiveSession(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s complete.\n", workout.Name)
	case snap.State == session.StateCompleted && snap.Notice != nil:
		fmt.Fprintf(out, "Session finished but not saved: %v\nRetry with: lightweight-cli session resume %s\n", snap.Notice, sess.ID)
	case snap.State == session.StateCompleted:
		fmt.Fprintf(out, "Session finished; the completion is still being saved.\nIf it does not show in history, run: lightweight-cli session resume %s\n", sess.ID)
	default:
		fmt.Fprintf(out, "Session paused at exercise %d of %d.\nResume with: lightweight-cli session resume %s\n", snap.Index+1, snap.Total, sess.ID)
	}
	return nil
}

// sessionLogger writes runtime logs to a file so they do not corrupt the screen.
func (a *app) sessionLogger() (*slog.Logger, func()) {
	f, err := os.OpenFile(filepath.Join(a.stateDir, "session.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})), func() { _ = f.Close() }
}
