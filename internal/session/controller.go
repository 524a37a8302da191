package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/lightweight/internal/models"
	"github.com/google/uuid"
)

// Store is the slice of the data service the runtime needs.
type Store interface {
	ListExercises(ctx context.Context, workoutID uuid.UUID) ([]models.Exercise, error)
	InsertSetLog(ctx context.Context, l models.SetLog) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID, completedAt time.Time) error
}

// State is the lifecycle stage of a session.
type State int

const (
	StateLoading State = iota
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a copy of the runtime state for display.
type Snapshot struct {
	State    State
	TornDown bool

	Exercise    models.Exercise
	HasExercise bool
	Index       int
	Total       int
	Exercises   []models.Exercise

	Remaining  int
	Duration   int
	Progress   float64
	EndingSoon bool
	// Expired is set when the clock, not the exercise list, ended the session.
	Expired bool

	Feedback       *Feedback
	AdvancePending bool
	Alert          string
	Notice         error
	// Saving is set while the completion write is still being attempted.
	Saving bool
}

// Controller runs one timed session. All state is guarded by mu; scheduled
// callbacks carry the generation they were created in and become no-ops once
// the session reaches its terminal state or is torn down.
type Controller struct {
	store Store
	opts  Options
	sched Scheduler
	log   *slog.Logger

	mu        sync.Mutex
	ctx       context.Context
	state     State
	tornDown  bool
	gen       uint64
	countdown *Countdown
	prog      *Progression
	feedback  *Feedback
	pending   bool
	expired   bool
	alert     string
	alertSeq  uint64
	notice    error
	saving    bool

	stopTick      Cancel
	cancelAdvance Cancel
	cancelAlert   Cancel

	updates  chan struct{}
	done     chan struct{}
	doneOnce sync.Once
}

// New creates a controller in the Loading state. Call Start to fetch the
// exercises and begin the clock.
func New(store Store, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		store:     store,
		opts:      opts,
		sched:     opts.Scheduler,
		log:       opts.Logger.With("session", opts.SessionID),
		ctx:       context.Background(),
		countdown: NewCountdown(int(opts.Duration/time.Second), opts.Watchpoints),
		prog:      NewProgression(nil),
		updates:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start loads the exercise list and enters Active. A session resumed with all
// of its exercises logged, or with no time left, completes immediately.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return ErrTornDown
	}
	if c.state != StateLoading {
		c.mu.Unlock()
		return errors.New("session already started")
	}
	c.ctx = context.WithoutCancel(ctx)
	c.mu.Unlock()

	exercises, err := c.store.ListExercises(ctx, c.opts.WorkoutID)
	if err != nil {
		return fmt.Errorf("loading exercises: %w", err)
	}

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return ErrTornDown
	}
	c.prog = NewProgression(exercises)
	c.state = StateActive

	finished := false
	if r := c.opts.Resume; r != nil {
		c.countdown.SetRemaining(c.countdown.Total() - int(r.Elapsed/time.Second))
		c.countdown.Skip()
		for i := 0; i < r.Logged && c.prog.Len() > 0; i++ {
			if errors.Is(c.prog.Advance(), ErrSessionFinished) {
				finished = true
				break
			}
		}
		c.log.Info("session resumed", "elapsed", r.Elapsed, "logged", r.Logged)
	}

	c.log.Info("session started", "exercises", len(exercises), "remaining", c.countdown.Remaining())

	if finished || c.countdown.Expired() {
		at := c.completeLocked(c.countdown.Expired())
		if r := c.opts.Resume; r != nil && c.expired && !r.StartedAt.IsZero() {
			// The clock ran out while nobody was watching.
			at = r.StartedAt.Add(c.opts.Duration).UTC()
		}
		c.mu.Unlock()
		c.finish(at)
		return nil
	}

	gen := c.gen
	c.stopTick = c.sched.Every(time.Second, func() { c.tick(gen) })
	c.notifyLocked()
	c.mu.Unlock()
	return nil
}

// LogSet parses and evaluates a set for the current exercise, records it and
// schedules the move to the next exercise. Invalid input returns an
// *InputError with no side effects. A write that still fails after retries
// returns a *PersistenceError; progression continues regardless.
func (c *Controller) LogSet(ctx context.Context, weight, reps string) (Feedback, error) {
	set, err := ParseSet(weight, reps)
	if err != nil {
		return Feedback{}, err
	}

	c.mu.Lock()
	if err := c.acceptingLocked(); err != nil {
		c.mu.Unlock()
		return Feedback{}, err
	}
	if c.pending {
		c.mu.Unlock()
		return Feedback{}, ErrAdvancePending
	}
	ex, err := c.prog.Current()
	if err != nil {
		c.mu.Unlock()
		return Feedback{}, err
	}

	fb := Evaluate(set, Target{Weight: ex.TargetWeight, Reps: ex.TargetReps})
	c.feedback = &fb
	c.pending = true
	c.notice = nil
	gen := c.gen
	entry := models.SetLog{
		ID:           uuid.New(),
		SessionLogID: c.opts.SessionID,
		ExerciseID:   ex.ID,
		ActualWeight: set.Weight,
		ActualReps:   set.Reps,
		LoggedAt:     c.sched.Now().UTC(),
	}
	c.notifyLocked()
	c.mu.Unlock()

	c.log.Info("set logged", "exercise", ex.ID, "weight", set.Weight, "reps", set.Reps, "outcome", fb.Outcome)
	perr := c.persist(ctx, "log set", true, func(ctx context.Context) error {
		return c.store.InsertSetLog(ctx, entry)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return fb, perr
	}
	if perr != nil {
		c.notice = perr
	}
	c.cancelAdvance = c.sched.AfterFunc(c.opts.AdvanceDelay, func() { c.advance(gen) })
	c.notifyLocked()
	return fb, perr
}

// ReplaceCurrentExercise renames the active exercise for the rest of the session.
func (c *Controller) ReplaceCurrentExercise(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &InputError{Field: "exercise name"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.acceptingLocked(); err != nil {
		return err
	}
	if err := c.prog.ReplaceCurrent(name); err != nil {
		return err
	}
	c.log.Info("exercise replaced", "index", c.prog.Index(), "name", name)
	c.notifyLocked()
	return nil
}

// ExtendTime adds seconds to the clock, never beyond the session length.
func (c *Controller) ExtendTime(seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.acceptingLocked(); err != nil {
		return err
	}
	c.countdown.Extend(seconds)
	c.notifyLocked()
	return nil
}

// DismissNotice clears a surfaced persistence failure.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
	c.notifyLocked()
}

// Teardown stops the clock and cancels every pending task. After it returns
// no state changes and no new writes are issued. A completion write already
// under way keeps its retries and Done closes once it resolves. Safe to call
// more than once.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	c.tornDown = true
	c.gen++
	c.cancelTasksLocked()
	saving := c.saving
	c.mu.Unlock()

	if saving {
		c.log.Info("session torn down while saving completion")
		return
	}
	c.log.Info("session torn down")
	c.closeDone()
}

// Done is closed once the session reaches its terminal state and the
// completion write has resolved, or on teardown when no completion write is
// in flight.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Updates receives a value whenever the snapshot may have changed. Sends are
// coalesced; a slow reader only sees the latest change.
func (c *Controller) Updates() <-chan struct{} { return c.updates }

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:          c.state,
		TornDown:       c.tornDown,
		Index:          c.prog.Index(),
		Total:          c.prog.Len(),
		Exercises:      c.prog.Exercises(),
		Remaining:      c.countdown.Remaining(),
		Duration:       c.countdown.Total(),
		Progress:       c.countdown.Progress(),
		EndingSoon:     c.countdown.EndingSoon(),
		Expired:        c.expired,
		AdvancePending: c.pending,
		Alert:          c.alert,
		Notice:         c.notice,
		Saving:         c.saving,
	}
	if ex, err := c.prog.Current(); err == nil && c.state == StateActive {
		s.Exercise = ex
		s.HasExercise = true
	}
	if c.feedback != nil {
		fb := *c.feedback
		s.Feedback = &fb
	}
	return s
}

func (c *Controller) acceptingLocked() error {
	switch {
	case c.tornDown:
		return ErrTornDown
	case c.state == StateLoading:
		return ErrNotStarted
	case c.state == StateCompleted:
		return ErrSessionCompleted
	}
	return nil
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	expired := c.countdown.Tick()
	for _, wp := range c.countdown.Crossed() {
		c.showAlertLocked(wp.Message)
	}
	if expired {
		c.log.Info("session clock expired", "index", c.prog.Index(), "total", c.prog.Len())
		at := c.completeLocked(true)
		c.mu.Unlock()
		c.finish(at)
		return
	}
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Controller) advance(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	c.cancelAdvance = nil
	c.pending = false
	c.feedback = nil
	if errors.Is(c.prog.Advance(), ErrSessionFinished) {
		at := c.completeLocked(false)
		c.mu.Unlock()
		c.finish(at)
		return
	}
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Controller) showAlertLocked(msg string) {
	c.alert = msg
	c.alertSeq++
	seq := c.alertSeq
	if c.cancelAlert != nil {
		c.cancelAlert()
	}
	gen := c.gen
	c.cancelAlert = c.sched.AfterFunc(c.opts.AlertDisplay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || seq != c.alertSeq {
			return
		}
		c.alert = ""
		c.cancelAlert = nil
		c.notifyLocked()
	})
}

// completeLocked moves to the terminal state and returns the completion time.
// The caller must release the lock and call finish.
func (c *Controller) completeLocked(expired bool) time.Time {
	c.state = StateCompleted
	c.expired = expired
	c.saving = true
	c.gen++
	c.pending = false
	c.alert = ""
	c.cancelTasksLocked()
	c.notifyLocked()
	return c.sched.Now().UTC()
}

// finish records the completion and releases Done.
func (c *Controller) finish(at time.Time) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	err := c.persist(ctx, "complete session", false, func(ctx context.Context) error {
		return c.store.CompleteSession(ctx, c.opts.SessionID, at)
	})

	c.mu.Lock()
	c.saving = false
	if err != nil {
		c.notice = err
	}
	c.notifyLocked()
	c.mu.Unlock()

	if err == nil {
		c.log.Info("session completed", "at", at)
	}
	c.closeDone()
}

func (c *Controller) cancelTasksLocked() {
	for _, cancel := range []Cancel{c.stopTick, c.cancelAdvance, c.cancelAlert} {
		if cancel != nil {
			cancel()
		}
	}
	c.stopTick, c.cancelAdvance, c.cancelAlert = nil, nil, nil
}

// persist runs a write with bounded retries and exponential backoff. Errors
// the store marks as permanent are not retried. When abortable, no attempt is
// made once the controller has been torn down.
func (c *Controller) persist(ctx context.Context, op string, abortable bool, write func(context.Context) error) error {
	var lastErr error
	tries := 0
	for attempt := range c.opts.WriteAttempts {
		if attempt > 0 {
			if err := sleep(ctx, c.opts.WriteBackoff<<uint(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}
		if abortable && c.isTornDown() {
			if lastErr == nil {
				lastErr = ErrTornDown
			}
			break
		}
		tries++
		if lastErr = write(ctx); lastErr == nil {
			return nil
		}
		c.log.Warn("write failed", "op", op, "attempt", attempt+1, "error", lastErr)
		if isPermanent(lastErr) {
			break
		}
	}
	perr := &PersistenceError{Op: op, Attempts: tries, Err: lastErr}
	c.log.Error("giving up on write", "op", op, "error", perr)
	return perr
}

func (c *Controller) isTornDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tornDown
}

func (c *Controller) notifyLocked() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func (c *Controller) closeDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
