package sim

import (
	"time"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// Pin implements hal.EdgePin on a Line.
type Pin struct {
	name   string
	line   *Line
	output bool
	cancel func()
}

// Name implements hal.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Line returns the wire the pin is attached to.
func (p *Pin) Line() *Line {
	return p.line
}

// IsOutput reports the pin direction.
func (p *Pin) IsOutput() bool {
	return p.output
}

// Out implements hal.Pin.
func (p *Pin) Out(level hal.Level) error {
	p.output = true
	p.line.Drive(p, level)
	return nil
}

// In implements hal.Pin.
func (p *Pin) In(pull hal.Pull) error {
	p.output = false
	switch pull {
	case hal.PullUp:
		p.line.SetPull(hal.High)
	case hal.PullDown:
		p.line.SetPull(hal.Low)
	}
	p.line.Release(p)
	return nil
}

// Read implements hal.Pin.
func (p *Pin) Read() hal.Level {
	return p.line.Level()
}

// Watch implements hal.EdgePin.
func (p *Pin) Watch(edge hal.Edge, fn func()) error {
	p.Unwatch()
	p.cancel = p.line.OnEdge(edge, fn)
	return nil
}

// Unwatch implements hal.EdgePin.
func (p *Pin) Unwatch() error {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return nil
}

// Watching reports whether an edge handler is installed.
func (p *Pin) Watching() bool {
	return p.cancel != nil
}

// Board implements hal.Board. Pins are created on first use, each on its
// own line named "<board>.<pin>" unless attached to a shared line.
type Board struct {
	name     string
	clock    *Clock
	recorder *Recorder
	pins     map[string]*Pin
}

// NewBoard creates a board on the clock.
func NewBoard(name string, clock *Clock, recorder *Recorder) *Board {
	return &Board{
		name:     name,
		clock:    clock,
		recorder: recorder,
		pins:     make(map[string]*Pin),
	}
}

// Name returns the board name.
func (b *Board) Name() string {
	return b.name
}

// LineName returns the default line name of a pin.
func (b *Board) LineName(pin string) string {
	return b.name + "." + pin
}

// Attach puts pin on an existing line. It must be called before the pin
// is first used.
func (b *Board) Attach(pin string, line *Line) *Pin {
	p := &Pin{name: pin, line: line}
	b.pins[pin] = p
	return p
}

// SimPin returns the pin, creating it idle high when missing.
func (b *Board) SimPin(name string) *Pin {
	if p, ok := b.pins[name]; ok {
		return p
	}
	return b.Attach(name, NewLine(b.clock, b.recorder, b.LineName(name), hal.High))
}

// Pin implements hal.Board.
func (b *Board) Pin(name string) (hal.Pin, error) {
	return b.SimPin(name), nil
}

// EdgePin implements hal.Board.
func (b *Board) EdgePin(name string) (hal.EdgePin, error) {
	return b.SimPin(name), nil
}

// NewTimer implements hal.Board.
func (b *Board) NewTimer() hal.Timer {
	return b.clock.NewTimer()
}

// Clock implements hal.Board.
func (b *Board) Clock() hal.Clock {
	return b.clock
}

// SimClock returns the virtual clock.
func (b *Board) SimClock() *Clock {
	return b.clock
}

// Recorder returns the shared transition recorder.
func (b *Board) Recorder() *Recorder {
	return b.recorder
}

// Wire joins pin a of board x and pin b of board y on one line, pulled
// high (idle mark of a serial line).
func Wire(name string, x *Board, a string, y *Board, b string) *Line {
	line := NewLine(x.clock, x.recorder, name, hal.High)
	x.Attach(a, line)
	y.Attach(b, line)
	return line
}

// Bench is a clock plus a recorder shared by a set of boards.
type Bench struct {
	Clock    *Clock
	Recorder *Recorder
}

// NewBench creates a Bench.
func NewBench() *Bench {
	return &Bench{Clock: NewClock(), Recorder: &Recorder{}}
}

// NewBoard creates a board on the bench.
func (b *Bench) NewBoard(name string) *Board {
	return NewBoard(name, b.Clock, b.Recorder)
}

// Elapsed returns the virtual time since the bench started.
func (b *Bench) Elapsed() time.Duration {
	return b.Clock.Now()
}
