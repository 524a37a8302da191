package session

import "sort"

// Watchpoint is a remaining-time boundary that raises a one-shot alert.
type Watchpoint struct {
	Remaining int // seconds left on the clock
	Message   string
}

// DefaultWatchpoints fire 10 and 20 minutes into a 30 minute session and with
// 5 minutes left.
func DefaultWatchpoints() []Watchpoint {
	return []Watchpoint{
		{Remaining: 1200, Message: "10 minutes in. Keep the pace."},
		{Remaining: 600, Message: "20 minutes in. Final stretch ahead."},
		{Remaining: 300, Message: "5 minutes left. Finish strong."},
	}
}

// EndingSoonSeconds is the remaining time at which the clock is shown as ending soon.
const EndingSoonSeconds = 300

// Countdown is a fixed-duration decrementing clock. It is not safe for
// concurrent use; the controller serializes access.
type Countdown struct {
	total       int
	remaining   int
	expired     bool
	watchpoints []Watchpoint
	seen        map[int]bool
}

// NewCountdown starts a countdown of total seconds with the given watch points.
func NewCountdown(total int, watchpoints []Watchpoint) *Countdown {
	if total < 0 {
		total = 0
	}
	wps := append([]Watchpoint(nil), watchpoints...)
	sort.Slice(wps, func(i, j int) bool { return wps[i].Remaining > wps[j].Remaining })
	return &Countdown{
		total:       total,
		remaining:   total,
		expired:     total == 0,
		watchpoints: wps,
		seen:        make(map[int]bool),
	}
}

// Tick decrements the clock by one second. It returns true only on the tick
// that reaches zero; ticks after expiry are ignored.
func (c *Countdown) Tick() bool {
	if c.expired {
		return false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.expired = true
		return true
	}
	return false
}

// Crossed returns the watch points the clock is now at or below that have not
// fired yet, and marks them seen.
func (c *Countdown) Crossed() []Watchpoint {
	var out []Watchpoint
	for _, wp := range c.watchpoints {
		if c.remaining <= wp.Remaining && !c.seen[wp.Remaining] {
			c.seen[wp.Remaining] = true
			out = append(out, wp)
		}
	}
	return out
}

// Skip marks every watch point at or above the current remaining time as seen
// without firing it. Used when a session resumes part way through.
func (c *Countdown) Skip() {
	for _, wp := range c.watchpoints {
		if c.remaining <= wp.Remaining {
			c.seen[wp.Remaining] = true
		}
	}
}

// Extend adds seconds to the clock, clamped to the total duration. An expired
// clock stays expired.
func (c *Countdown) Extend(seconds int) {
	if c.expired || seconds <= 0 {
		return
	}
	c.remaining += seconds
	if c.remaining > c.total {
		c.remaining = c.total
	}
}

// SetRemaining places the clock at the given remaining seconds, clamped to
// [0, total]. Reaching zero expires the clock.
func (c *Countdown) SetRemaining(seconds int) {
	if c.expired {
		return
	}
	c.remaining = max(0, min(seconds, c.total))
	if c.remaining == 0 {
		c.expired = true
	}
}

func (c *Countdown) Remaining() int { return c.remaining }
func (c *Countdown) Total() int     { return c.total }
func (c *Countdown) Expired() bool  { return c.expired }

// Progress is the elapsed fraction of the session, clamped to [0,1].
func (c *Countdown) Progress() float64 {
	if c.total == 0 {
		return 1
	}
	p := float64(c.total-c.remaining) / float64(c.total)
	return max(0, min(p, 1))
}

// EndingSoon reports whether the clock is in its final minutes.
func (c *Countdown) EndingSoon() bool {
	return c.remaining <= EndingSoonSeconds
}
