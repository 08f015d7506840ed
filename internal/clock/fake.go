package clock

import (
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
)

// Fake is a manually advanced clock over a time2.MockClock. AfterFunc callbacks run
// synchronously inside Advance, in deadline order, ties broken by scheduling order.
// After and Sleep wake as the mock clock passes their deadline.
type Fake struct {
	mu     sync.Mutex
	base   *time2.MockClock
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *Fake
	at    time.Time
	seq   uint64
	fn    func()
	done  bool
}

// NewFake returns a Fake clock starting at now.
func NewFake(now time.Time) *Fake {
	return &Fake{base: time2.NewMockClock(now)}
}

// Now returns the fake current time.
func (c *Fake) Now() time.Time {
	return c.base.Now()
}

// Since returns the fake time elapsed since t.
func (c *Fake) Since(t time.Time) time.Duration {
	return c.base.Since(t)
}

// After delivers the fake time once the clock has been advanced by d.
func (c *Fake) After(d time.Duration) <-chan time.Time {
	return c.base.After(d)
}

// Sleep blocks until another goroutine advances the clock by d.
func (c *Fake) Sleep(d time.Duration) {
	c.base.Sleep(d)
}

// AfterFunc schedules f to run once the clock has been advanced by d.
func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &fakeTimer{clock: c, at: c.base.Now().Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that comes due.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.base.Now().Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.base.AdvanceTo(target)
			c.mu.Unlock()
			return
		}
		c.base.AdvanceTo(next.at)
		next.done = true
		c.remove(next)
		c.mu.Unlock()

		next.fn()
	}
}

// Pending reports how many timers are scheduled and not yet fired or stopped.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Fake) nextDue(target time.Time) *fakeTimer {
	var best *fakeTimer
	for _, t := range c.timers {
		if t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *Fake) remove(t *fakeTimer) {
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}
