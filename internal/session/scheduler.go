package session

import (
	"sort"
	"sync"
	"time"
)

// Cancel stops a scheduled task. It is safe to call more than once and from
// inside the task itself.
type Cancel func()

// Scheduler runs deferred and periodic callbacks. The controller owns every
// task it schedules and cancels them on teardown.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Cancel
	Every(d time.Duration, f func()) Cancel
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

// Now returns the current wall-clock time.
func (RealScheduler) Now() time.Time { return time.Now() }

// AfterFunc runs f once after d on its own goroutine.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Cancel {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Every runs f every d until cancelled. The ticking goroutine exits once the
// returned Cancel is called.
func (RealScheduler) Every(d time.Duration, f func()) Cancel {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				f()
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}

// ManualScheduler is a deterministic scheduler driven by Advance. Callbacks
// run synchronously on the goroutine calling Advance, in due-time order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	id     uint64
	at     time.Time
	period time.Duration
	f      func()
}

// NewManualScheduler returns a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the simulated time.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once when the clock passes now+d.
func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Cancel {
	return m.add(d, 0, f)
}

// Every schedules f to run every d.
func (m *ManualScheduler) Every(d time.Duration, f func()) Cancel {
	if d <= 0 {
		panic("session: non-positive interval")
	}
	return m.add(d, d, f)
}

func (m *ManualScheduler) add(d, period time.Duration, f func()) Cancel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{id: m.seq, at: m.now.Add(d), period: period, f: f}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.removeLocked(t)
	}
}

// Pending returns the number of tasks still scheduled.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Advance moves the clock forward by d, running every task that falls due.
// Tasks scheduled by callbacks run in the same call if they fall due before
// the new time.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		if t.period > 0 {
			t.at = t.at.Add(t.period)
		} else {
			m.removeLocked(t)
		}
		m.mu.Unlock()

		t.f()
	}
}

func (m *ManualScheduler) nextDueLocked(target time.Time) *manualTask {
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at.Equal(m.tasks[j].at) {
			return m.tasks[i].id < m.tasks[j].id
		}
		return m.tasks[i].at.Before(m.tasks[j].at)
	})
	t := m.tasks[0]
	if t.at.After(target) {
		return nil
	}
	return t
}

func (m *ManualScheduler) removeLocked(t *manualTask) {
	for i, x := range m.tasks {
		if x == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return
		}
	}
}
