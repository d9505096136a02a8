package sim

import (
	"container/heap"
	"errors"
	"time"
)

// DefaultQuantum is how far an idle Yield advances the clock.
const DefaultQuantum = time.Microsecond

// ErrStalled indicates RunUntil gave up before the condition held.
var ErrStalled = errors.New("simulation stalled")

// Clock is a virtual clock driving a single threaded event scheduler.
// Interrupt handlers (timers, edges) run inside Yield and Delay on the
// caller's goroutine, so a simulation is fully deterministic.
type Clock struct {
	Quantum time.Duration

	now    time.Duration
	seq    uint64
	events eventQueue
}

type event struct {
	at    time.Duration
	seq   uint64
	fn    func()
	index int
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q eventQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index, q[j].index = i, j
}

func (q *eventQueue) Push(x interface{}) {
	ev := x.(*event)
	ev.index = len(*q)
	*q = append(*q, ev)
}

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*q = old[:n-1]
	return ev
}

// NewClock creates a Clock at time zero.
func NewClock() *Clock {
	return &Clock{Quantum: DefaultQuantum}
}

// Now implements hal.Clock.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Pending returns the number of scheduled events.
func (c *Clock) Pending() int {
	return len(c.events)
}

// Yield implements hal.Clock. It fires the next event if it is due within
// one quantum, otherwise advances time by a quantum.
func (c *Clock) Yield() {
	q := c.Quantum
	if q <= 0 {
		q = DefaultQuantum
	}
	if len(c.events) > 0 && c.events[0].at <= c.now+q {
		c.fireNext()
		return
	}
	c.now += q
}

// Delay implements hal.Clock. Events due within d fire in order.
func (c *Clock) Delay(d time.Duration) {
	target := c.now + d
	for len(c.events) > 0 && c.events[0].at <= target {
		c.fireNext()
	}
	if target > c.now {
		c.now = target
	}
}

// RunFor advances the simulation by d.
func (c *Clock) RunFor(d time.Duration) {
	c.Delay(d)
}

// RunUntil yields until cond holds or limit of virtual time elapsed.
func (c *Clock) RunUntil(cond func() bool, limit time.Duration) error {
	deadline := c.now + limit
	for !cond() {
		if c.now >= deadline {
			return ErrStalled
		}
		c.Yield()
	}
	return nil
}

func (c *Clock) schedule(at time.Duration, fn func()) *event {
	if at < c.now {
		at = c.now
	}
	c.seq++
	ev := &event{at: at, seq: c.seq, fn: fn}
	heap.Push(&c.events, ev)
	return ev
}

func (c *Clock) cancel(ev *event) {
	if ev != nil && ev.index >= 0 {
		heap.Remove(&c.events, ev.index)
	}
}

func (c *Clock) fireNext() {
	ev := heap.Pop(&c.events).(*event)
	if ev.at > c.now {
		c.now = ev.at
	}
	ev.fn()
}

// After schedules fn to run once after d.
func (c *Clock) After(d time.Duration, fn func()) {
	c.schedule(c.now+d, fn)
}
