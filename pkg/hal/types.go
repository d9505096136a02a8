package hal

import "time"

// Level is the logic level of a line.
type Level bool

// Logic levels.
const (
	Low  Level = false
	High Level = true
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l {
		return "High"
	}
	return "Low"
}

// Edge selects the transitions an EdgePin reports.
type Edge int

// Edges.
const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
	BothEdges
)

// Matches reports whether a transition from -> to is selected by the edge.
func (e Edge) Matches(from, to Level) bool {
	if from == to {
		return false
	}
	switch e {
	case RisingEdge:
		return to == High
	case FallingEdge:
		return to == Low
	case BothEdges:
		return true
	}
	return false
}

// Pull is the input bias of a pin.
type Pull int

// Pulls.
const (
	Float Pull = iota
	PullDown
	PullUp
)

// Pin is a digital line the engines drive or sample.
type Pin interface {
	Name() string
	// Out turns the pin into an output driving the level.
	Out(Level) error
	// In turns the pin into an input.
	In(Pull) error
	// Read samples the current line level.
	Read() Level
}

// EdgePin is a Pin able to raise an interrupt on transitions.
type EdgePin interface {
	Pin
	// Watch calls fn on each selected transition until Unwatch.
	// fn runs in interrupt context and must not block.
	Watch(edge Edge, fn func()) error
	// Unwatch disables the interrupt. It's safe to call from fn.
	Unwatch() error
}

// Timer is an auto-reloading compare interrupt.
type Timer interface {
	// Start fires fn after first, then every period until Stop.
	// Starting a running timer restarts it.
	Start(first, period time.Duration, fn func())
	// Stop disables further firings. It's safe to call from fn.
	Stop()
}

// Clock provides time to busy-waiting code.
type Clock interface {
	// Now returns the time elapsed since the clock started.
	Now() time.Duration
	// Delay blocks the caller for at least d.
	Delay(d time.Duration)
	// Yield is one step of a busy-wait loop.
	Yield()
}

// Board resolves pins and timers by name.
type Board interface {
	Pin(name string) (Pin, error)
	EdgePin(name string) (EdgePin, error)
	NewTimer() Timer
	Clock() Clock
}

// WaitUntil busy-waits on cond. A zero timeout waits forever.
func WaitUntil(c Clock, cond func() bool, timeout time.Duration) bool {
	if timeout <= 0 {
		for !cond() {
			c.Yield()
		}
		return true
	}
	deadline := c.Now() + timeout
	for !cond() {
		if c.Now() >= deadline {
			return false
		}
		c.Yield()
	}
	return true
}
