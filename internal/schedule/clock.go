// Package schedule runs deferred callbacks on frame time instead of wall
// time, so they fire on the frame goroutine between ticks and never race the
// state they touch.
package schedule

import (
	"container/heap"
	"time"
)

// Clock is a frame-time timer queue. It is not safe for concurrent use; the
// frame loop owns it.
type Clock struct {
	now   float64
	seq   uint64
	queue timerHeap
}

// Timer is a pending callback created by AfterFunc.
type Timer struct {
	clock   *Clock
	at      float64
	seq     uint64
	fn      func()
	index   int
	stopped bool
	fired   bool
}

func New() *Clock {
	return &Clock{}
}

// Now is the frame time of the last Advance, in seconds.
func (c *Clock) Now() float64 {
	return c.now
}

// Pending is the number of timers waiting to fire.
func (c *Clock) Pending() int {
	return len(c.queue)
}

// AfterFunc schedules fn to run on the first Advance whose time is at least
// d past the current frame time.
func (c *Clock) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &Timer{
		clock: c,
		at:    c.now + d.Seconds(),
		seq:   c.seq,
		fn:    fn,
	}
	heap.Push(&c.queue, t)
	return t
}

// Advance moves frame time to now and runs every timer that came due, in
// deadline order. Time never moves backwards. Timers scheduled by a callback
// wait for the next Advance. It returns how many callbacks ran.
func (c *Clock) Advance(now float64) int {
	if now > c.now {
		c.now = now
	}

	var due []*Timer
	for len(c.queue) > 0 && c.queue[0].at <= c.now {
		due = append(due, heap.Pop(&c.queue).(*Timer))
	}

	ran := 0
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fired = true
		if t.fn != nil {
			t.fn()
		}
		ran++
	}
	return ran
}

// Reset drops every pending timer and rewinds frame time to zero.
func (c *Clock) Reset() {
	for _, t := range c.queue {
		t.stopped = true
		t.index = -1
	}
	c.queue = c.queue[:0]
	c.now = 0
}

// Stop prevents the timer from firing. It reports whether the call stopped
// it, false if it already fired or was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped || t.fired {
		return false
	}
	t.stopped = true
	if t.index >= 0 && t.clock != nil {
		heap.Remove(&t.clock.queue, t.index)
	}
	return true
}

// Deadline is the frame time the timer fires at.
func (t *Timer) Deadline() float64 {
	return t.at
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
