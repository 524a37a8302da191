package session

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)

func TestManualSchedulerOrder(t *testing.T) {
	s := NewManualScheduler(epoch)
	var got []string
	s.AfterFunc(3*time.Second, func() { got = append(got, "c") })
	s.AfterFunc(1*time.Second, func() { got = append(got, "a") })
	s.AfterFunc(1*time.Second, func() { got = append(got, "b") })

	s.Advance(2 * time.Second)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("after 2s got = %v, want [a b]", got)
	}
	if !s.Now().Equal(epoch.Add(2 * time.Second)) {
		t.Errorf("Now() = %v", s.Now())
	}
	s.Advance(time.Second)
	if len(got) != 3 || got[2] != "c" {
		t.Errorf("after 3s got = %v", got)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestManualSchedulerEveryAndCancel(t *testing.T) {
	s := NewManualScheduler(epoch)
	ticks := 0
	cancel := s.Every(time.Second, func() { ticks++ })

	s.Advance(5 * time.Second)
	if ticks != 5 {
		t.Errorf("ticks = %d, want 5", ticks)
	}
	cancel()
	cancel()
	s.Advance(5 * time.Second)
	if ticks != 5 {
		t.Errorf("ticks after cancel = %d, want 5", ticks)
	}
}

func TestManualSchedulerCallbackSchedules(t *testing.T) {
	s := NewManualScheduler(epoch)
	var at []time.Duration
	s.AfterFunc(time.Second, func() {
		at = append(at, s.Now().Sub(epoch))
		s.AfterFunc(500*time.Millisecond, func() { at = append(at, s.Now().Sub(epoch)) })
	})

	s.Advance(2 * time.Second)
	if len(at) != 2 || at[0] != time.Second || at[1] != 1500*time.Millisecond {
		t.Errorf("at = %v, want [1s 1.5s]", at)
	}
}

func TestManualSchedulerCancelFromCallback(t *testing.T) {
	s := NewManualScheduler(epoch)
	ticks := 0
	var cancel Cancel
	cancel = s.Every(time.Second, func() {
		ticks++
		if ticks == 3 {
			cancel()
		}
	})
	s.Advance(10 * time.Second)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestRealSchedulerEveryStops(t *testing.T) {
	ticked := make(chan struct{}, 16)
	cancel := RealScheduler{}.Every(5*time.Millisecond, func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("no tick within 2s")
	}
	cancel()
	cancel()
}

func TestRealSchedulerAfterFuncCancel(t *testing.T) {
	fired := make(chan struct{})
	cancel := RealScheduler{}.AfterFunc(time.Hour, func() { close(fired) })
	cancel()

	done := make(chan struct{})
	RealScheduler{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AfterFunc did not fire within 2s")
	}
	select {
	case <-fired:
		t.Error("cancelled task fired")
	default:
	}
}
