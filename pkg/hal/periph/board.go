// Package periph implements hal on Linux boards through periph.io.
package periph

import (
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// spinBelow is the delay under which Clock.Delay spins instead of sleeping.
const spinBelow = 100 * time.Microsecond

var (
	initOnce sync.Once
	initErr  error
)

// Board implements hal.Board with host GPIO.
type Board struct {
	clock *Clock
	lock  sync.Mutex
	pins  map[string]*Pin
}

// Open initializes the host drivers and creates a Board.
func Open() (*Board, error) {
	initOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			initErr = err
			return
		}
		for _, failure := range state.Failed {
			glog.Warningf("periph driver %s failed: %v", failure.D, failure.Err)
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return &Board{clock: NewClock(), pins: make(map[string]*Pin)}, nil
}

// Pin implements hal.Board.
func (b *Board) Pin(name string) (hal.Pin, error) {
	return b.pin(name)
}

// EdgePin implements hal.Board.
func (b *Board) EdgePin(name string) (hal.EdgePin, error) {
	return b.pin(name)
}

func (b *Board) pin(name string) (*Pin, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if p, ok := b.pins[name]; ok {
		return p, nil
	}
	io := gpioreg.ByName(name)
	if io == nil {
		return nil, &hal.PinError{Pin: name, Op: "open", Err: hal.ErrNoSuchPin}
	}
	p := &Pin{io: io}
	b.pins[name] = p
	return p, nil
}

// NewTimer implements hal.Board.
func (b *Board) NewTimer() hal.Timer {
	return &Timer{}
}

// Clock implements hal.Board.
func (b *Board) Clock() hal.Clock {
	return b.clock
}

// Clock implements hal.Clock with wall time.
type Clock struct {
	start time.Time
}

// NewClock creates a Clock starting now.
func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

// Now implements hal.Clock.
func (c *Clock) Now() time.Duration {
	return time.Since(c.start)
}

// Delay implements hal.Clock.
func (c *Clock) Delay(d time.Duration) {
	if d >= spinBelow {
		time.Sleep(d)
		return
	}
	for deadline := time.Now().Add(d); time.Now().Before(deadline); {
		runtime.Gosched()
	}
}

// Yield implements hal.Clock.
func (c *Clock) Yield() {
	runtime.Gosched()
}
