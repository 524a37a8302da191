package session

import (
	"io"
	"log/slog"
	"time"

	"github.com/claude/lightweight/internal/config"
	"github.com/google/uuid"
)

// Options configures a Controller.
type Options struct {
	SessionID uuid.UUID
	WorkoutID uuid.UUID

	Duration     time.Duration
	AdvanceDelay time.Duration
	AlertDisplay time.Duration
	Watchpoints  []Watchpoint

	// WriteAttempts bounds tries per write; WriteBackoff doubles after each failure.
	WriteAttempts int
	WriteBackoff  time.Duration

	// Resume restores a session that was interrupted. Nil starts fresh.
	Resume *Resume

	Scheduler Scheduler
	Logger    *slog.Logger
}

// Resume describes progress already persisted for a session.
type Resume struct {
	StartedAt time.Time     // when the session was opened
	Elapsed   time.Duration // time since the session started
	Logged    int           // set logs already recorded
}

// DefaultOptions returns options with the standard 30 minute session timings.
func DefaultOptions(sessionID, workoutID uuid.UUID) Options {
	return ConfigOptions(config.DefaultSession(), sessionID, workoutID)
}

// ConfigOptions builds options from the session section of the config file.
func ConfigOptions(cfg config.SessionConfig, sessionID, workoutID uuid.UUID) Options {
	wps := make([]Watchpoint, 0, len(cfg.Thresholds))
	for _, t := range cfg.Thresholds {
		wps = append(wps, Watchpoint{Remaining: t.RemainingSeconds, Message: t.Message})
	}
	return Options{
		SessionID:     sessionID,
		WorkoutID:     workoutID,
		Duration:      cfg.Duration(),
		AdvanceDelay:  cfg.AdvanceDelay(),
		AlertDisplay:  cfg.AlertDisplay(),
		Watchpoints:   wps,
		WriteAttempts: cfg.WriteAttempts,
		WriteBackoff:  cfg.WriteBackoff(),
	}
}

func (o Options) withDefaults() Options {
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.WriteAttempts < 1 {
		o.WriteAttempts = 1
	}
	return o
}
