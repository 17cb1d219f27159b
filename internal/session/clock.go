package session

import (
	"sync"
	"time"
)

// Clock drives the session. Schedule calls fn every period until the handle is cancelled.
type Clock interface {
	Schedule(period time.Duration, fn func()) Handle
	Now() time.Time
}

type Handle interface {
	Cancel()
}

// WallClock ticks on real time.
type WallClock struct{}

var _ Clock = WallClock{}

func (WallClock) Now() time.Time { return time.Now() }

func (WallClock) Schedule(period time.Duration, fn func()) Handle {
	h := &tickerHandle{done: make(chan struct{})}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				// a cancel racing with the tick wins
				select {
				case <-h.done:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

// Cancel is safe to call from inside the scheduled fn.
func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// ManualClock only moves when told to. Scheduled callbacks run synchronously inside Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

var _ Clock = (*ManualClock)(nil)

type manualTimer struct {
	clock     *ManualClock
	period    time.Duration
	next      time.Time
	fn        func()
	cancelled bool
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Schedule(period time.Duration, fn func()) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{
		clock:  c,
		period: period,
		next:   c.now.Add(period),
		fn:     fn,
	}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Cancel() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	t.cancelled = true
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			break
		}
	}
}

// Advance moves the clock forward by d, firing every due callback in time order.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var due *manualTimer
		for _, t := range c.timers {
			if t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next = due.next.Add(due.period)
		c.mu.Unlock()
		due.fn()
		c.mu.Lock()
	}
}

// Tick advances the clock by n whole seconds.
func (c *ManualClock) Tick(n int) {
	c.Advance(time.Duration(n) * time.Second)
}

// Pending reports how many schedules are still live.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
