package periph

import (
	"sync"
	"time"

	"periph.io/x/periph/conn/gpio"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// edgePollInterval bounds how long a watcher blocks in WaitForEdge
// before checking whether it was cancelled.
const edgePollInterval = 100 * time.Millisecond

// Pin implements hal.EdgePin over gpio.PinIO.
type Pin struct {
	io gpio.PinIO

	lock  sync.Mutex
	pull  gpio.Pull
	watch *watch
}

type watch struct {
	stop chan struct{}
	once sync.Once
}

func (w *watch) cancel() {
	w.once.Do(func() { close(w.stop) })
}

// Name implements hal.Pin.
func (p *Pin) Name() string {
	return p.io.Name()
}

// Out implements hal.Pin.
func (p *Pin) Out(level hal.Level) error {
	if err := p.io.Out(toLevel(level)); err != nil {
		return &hal.PinError{Pin: p.Name(), Op: "out", Err: err}
	}
	return nil
}

// In implements hal.Pin.
func (p *Pin) In(pull hal.Pull) error {
	p.lock.Lock()
	p.pull = toPull(pull)
	p.lock.Unlock()
	if err := p.io.In(toPull(pull), gpio.NoEdge); err != nil {
		return &hal.PinError{Pin: p.Name(), Op: "in", Err: err}
	}
	return nil
}

// Read implements hal.Pin.
func (p *Pin) Read() hal.Level {
	return p.io.Read() == gpio.High
}

// Watch implements hal.EdgePin. WaitForEdge runs in a goroutine which
// plays the role of the interrupt service routine.
func (p *Pin) Watch(edge hal.Edge, fn func()) error {
	p.lock.Lock()
	if p.watch != nil {
		p.watch.cancel()
	}
	pull := p.pull
	if pull == gpio.Float {
		pull = gpio.PullUp
	}
	if err := p.io.In(pull, toEdge(edge)); err != nil {
		p.lock.Unlock()
		return &hal.PinError{Pin: p.Name(), Op: "watch", Err: err}
	}
	w := &watch{stop: make(chan struct{})}
	p.watch = w
	p.lock.Unlock()

	go func() {
		for {
			select {
			case <-w.stop:
				return
			default:
			}
			if !p.io.WaitForEdge(edgePollInterval) {
				continue
			}
			select {
			case <-w.stop:
				return
			default:
				fn()
			}
		}
	}()
	return nil
}

// Unwatch implements hal.EdgePin.
func (p *Pin) Unwatch() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.watch != nil {
		p.watch.cancel()
		p.watch = nil
	}
	return nil
}

func toLevel(l hal.Level) gpio.Level {
	if l {
		return gpio.High
	}
	return gpio.Low
}

func toPull(p hal.Pull) gpio.Pull {
	switch p {
	case hal.PullUp:
		return gpio.PullUp
	case hal.PullDown:
		return gpio.PullDown
	}
	return gpio.Float
}

func toEdge(e hal.Edge) gpio.Edge {
	switch e {
	case hal.RisingEdge:
		return gpio.RisingEdge
	case hal.FallingEdge:
		return gpio.FallingEdge
	case hal.BothEdges:
		return gpio.BothEdges
	}
	return gpio.NoEdge
}
