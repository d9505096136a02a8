package serial

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/robotalks/rfdoor/pkg/hal"
)

type engineState int

const (
	stateIdle         engineState = iota
	stateTransmitting             // shifting the frame out
	stateStartBit                 // edge seen, waiting for start bit centre
	stateDataBits                 // sampling data bits, then the stop bit
)

// Engine is a software serial port on a TX pin, an RX edge pin and a
// compare timer shared by both directions.
type Engine struct {
	Timing Timing

	tx    hal.Pin
	rx    hal.EdgePin
	timer hal.Timer
	clock hal.Clock

	// isr serialises the handlers with each other and with arming code,
	// the same way an interrupt source never nests with itself.
	isr      sync.Mutex
	state    engineState
	bitIndex int
	txFrame  uint16
	rxShift  byte
	armed    bool
	rearm    bool
	txBusy   uint32

	mail mailbox
}

// New creates an Engine. Init must be called before use.
func New(tx hal.Pin, rx hal.EdgePin, timer hal.Timer, clock hal.Clock) *Engine {
	return &Engine{
		Timing: DefaultTiming,
		tx:     tx,
		rx:     rx,
		timer:  timer,
		clock:  clock,
	}
}

// NewOnBoard resolves the pins on a board and creates an Engine.
func NewOnBoard(board hal.Board, txPin, rxPin string) (*Engine, error) {
	tx, err := board.Pin(txPin)
	if err != nil {
		return nil, err
	}
	rx, err := board.EdgePin(rxPin)
	if err != nil {
		return nil, err
	}
	return New(tx, rx, board.NewTimer(), board.Clock()), nil
}

// WithTiming sets the timing.
func (e *Engine) WithTiming(t Timing) *Engine {
	e.Timing = t
	return e
}

// Init drives TX to mark (idle) and configures RX as input.
func (e *Engine) Init() error {
	if err := e.tx.Out(hal.High); err != nil {
		return err
	}
	return e.rx.In(hal.PullUp)
}

// TransmitByte clocks one frame out and returns when the stop bit is done.
// It blocks for Timing.ByteTime. A receive in progress is allowed to
// finish first; an armed receiver is suspended and re-armed afterwards.
func (e *Engine) TransmitByte(v byte) {
	for {
		e.isr.Lock()
		if e.state == stateIdle {
			break
		}
		e.isr.Unlock()
		e.clock.Yield()
	}
	if e.armed {
		e.rx.Unwatch()
		e.armed, e.rearm = false, true
	}
	e.txFrame = (uint16(v) | 0x100) << 1
	e.bitIndex = FrameBits
	e.state = stateTransmitting
	atomic.StoreUint32(&e.txBusy, 1)
	e.timer.Start(e.Timing.Lead, e.Timing.BitPeriod, e.onTimer)
	e.isr.Unlock()

	hal.WaitUntil(e.clock, func() bool {
		return atomic.LoadUint32(&e.txBusy) == 0
	}, 0)
}

// ArmReceive waits for the next start bit. It never touches the mailbox
// and is a no-op while already armed. While a frame is in flight the
// request is remembered and applied when the frame completes.
func (e *Engine) ArmReceive() {
	e.isr.Lock()
	defer e.isr.Unlock()
	if e.state != stateIdle {
		e.rearm = true
		return
	}
	e.arm()
}

// PollReceivedByte returns the last received byte and empties the mailbox.
func (e *Engine) PollReceivedByte() (byte, bool) {
	return e.mail.take()
}

// Overruns counts bytes replaced in the mailbox before being read.
func (e *Engine) Overruns() int {
	return e.mail.overrunCount()
}

// ReadByte arms the receiver and busy-waits for a byte.
func (e *Engine) ReadByte(ctx context.Context) (byte, error) {
	e.ArmReceive()
	for {
		if b, ok := e.PollReceivedByte(); ok {
			return b, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		e.clock.Yield()
	}
}

func (e *Engine) arm() {
	e.rearm = false
	if e.armed {
		return
	}
	e.bitIndex = 0
	if err := e.rx.Watch(hal.FallingEdge, e.onStartEdge); err == nil {
		e.armed = true
	}
}

func (e *Engine) onStartEdge() {
	e.isr.Lock()
	defer e.isr.Unlock()
	if !e.armed || e.state != stateIdle {
		return
	}
	e.rx.Unwatch()
	e.armed = false
	e.state = stateStartBit
	e.bitIndex, e.rxShift = 0, 0
	e.timer.Start(e.Timing.HalfBit, e.Timing.BitPeriod, e.onTimer)
}

func (e *Engine) onTimer() {
	e.isr.Lock()
	defer e.isr.Unlock()
	switch e.state {
	case stateTransmitting:
		if e.bitIndex == 0 {
			e.finish()
			atomic.StoreUint32(&e.txBusy, 0)
			return
		}
		e.tx.Out(hal.Level(e.txFrame&1 != 0))
		e.txFrame >>= 1
		e.bitIndex--
	case stateStartBit:
		// start bit centre, not validated
		e.state = stateDataBits
	case stateDataBits:
		if e.bitIndex < 8 {
			e.rxShift >>= 1
			if e.rx.Read() == hal.High {
				e.rxShift |= 0x80
			}
			e.bitIndex++
			return
		}
		// stop bit centre, not validated either
		e.mail.deposit(e.rxShift)
		e.finish()
	default:
		e.timer.Stop()
	}
}

func (e *Engine) finish() {
	e.timer.Stop()
	e.state = stateIdle
	if e.rearm {
		e.arm()
	}
}
