package flow

import (
	"sync"
	"time"
)

// ManualClock is a Scheduler whose callbacks only run when fired explicitly.
// Use it in tests in place of WallClock.
type ManualClock struct {
	mu     sync.Mutex
	timers []*ManualTimer
}

// ManualTimer is a callback armed on a ManualClock.
type ManualTimer struct {
	Delay time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func (t *ManualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// Stopped reports whether Stop was called before the timer fired.
func (t *ManualTimer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Run invokes the callback regardless of the timer's state, which simulates
// a callback racing a Stop.
func (t *ManualTimer) Run() {
	t.mu.Lock()
	t.fired = true
	fn := t.fn
	t.mu.Unlock()
	fn()
}

func (t *ManualTimer) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTimer{Delay: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the timers that are armed and not yet fired, oldest first.
func (c *ManualClock) Pending() []*ManualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*ManualTimer
	for _, t := range c.timers {
		if t.live() {
			out = append(out, t)
		}
	}
	return out
}

// FireNext runs the oldest pending timer. It returns false when nothing is
// pending.
func (c *ManualClock) FireNext() (*ManualTimer, bool) {
	p := c.Pending()
	if len(p) == 0 {
		return nil, false
	}
	p[0].Run()
	return p[0], true
}

// FireAll keeps firing until no timer is pending and returns how many ran.
func (c *ManualClock) FireAll() int {
	n := 0
	for {
		if _, ok := c.FireNext(); !ok {
			return n
		}
		n++
	}
}
