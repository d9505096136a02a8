package sim

import "time"

// Timer implements hal.Timer on the virtual clock.
type Timer struct {
	clock  *Clock
	ev     *event
	period time.Duration
	fn     func()
	fires  int
}

// NewTimer creates a stopped timer.
func (c *Clock) NewTimer() *Timer {
	return &Timer{clock: c}
}

// Start implements hal.Timer.
func (t *Timer) Start(first, period time.Duration, fn func()) {
	t.Stop()
	t.period, t.fn = period, fn
	t.ev = t.clock.schedule(t.clock.now+first, t.fire)
}

// Stop implements hal.Timer.
func (t *Timer) Stop() {
	t.clock.cancel(t.ev)
	t.ev = nil
}

// Running reports whether a firing is scheduled.
func (t *Timer) Running() bool {
	return t.ev != nil
}

// Fires returns how many times the timer fired.
func (t *Timer) Fires() int {
	return t.fires
}

func (t *Timer) fire() {
	at := t.clock.now
	t.ev = nil
	if t.period > 0 {
		// reload before the handler so Stop inside it wins
		t.ev = t.clock.schedule(at+t.period, t.fire)
	}
	t.fires++
	t.fn()
}
