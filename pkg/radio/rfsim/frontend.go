// Package rfsim simulates RF-24G front-ends attached to simulated boards
// and the air between them.
package rfsim

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/radio"
)

// FrontEnd models the three wire side of an nRF2401: configuration and
// RXEN shifting while CS is high, payload shifting while CE is high in
// transmit role, and payload read-out gated by DR in receive role.
type FrontEnd struct {
	Name string

	air   *Air
	clock *sim.Clock
	ce    *sim.Line
	cs    *sim.Line
	clk   *sim.Line
	data  *sim.Line
	dr    *sim.Line

	params     radio.Params
	configured bool
	role       radio.Mode
	shift      []bool

	rxBits  []bool
	rxPos   int
	stuckDR bool

	sent      [][]byte
	received  [][]byte
	malformed int
}

// Attach connects a front-end to the radio lines of a board.
func (a *Air) Attach(name string, board *sim.Board, names radio.LineNames) *FrontEnd {
	fe := &FrontEnd{
		Name:  name,
		air:   a,
		clock: board.SimClock(),
		ce:    board.SimPin(names.CE).Line(),
		cs:    board.SimPin(names.CS).Line(),
		clk:   board.SimPin(names.CLK).Line(),
		data:  board.SimPin(names.DATA).Line(),
		dr:    board.SimPin(names.DR).Line(),
		role:  radio.ModeTransmit,
	}
	for _, l := range []*sim.Line{fe.ce, fe.cs, fe.clk, fe.data} {
		l.SetPull(hal.Low)
	}
	fe.dr.Drive(fe, hal.Low)

	fe.clk.OnEdge(hal.RisingEdge, fe.onClockRise)
	fe.clk.OnEdge(hal.FallingEdge, fe.onClockFall)
	fe.cs.OnEdge(hal.RisingEdge, fe.resetShift)
	fe.cs.OnEdge(hal.FallingEdge, fe.onSelectFall)
	fe.ce.OnEdge(hal.RisingEdge, fe.onEnableRise)
	fe.ce.OnEdge(hal.FallingEdge, fe.onEnableFall)
	a.frontEnds = append(a.frontEnds, fe)
	return fe
}

// Configured reports whether a full configuration word was latched.
func (fe *FrontEnd) Configured() bool {
	return fe.configured
}

// Params returns the latched configuration.
func (fe *FrontEnd) Params() radio.Params {
	p := fe.params
	p.Role = fe.role
	return p
}

// Role returns the current RXEN role.
func (fe *FrontEnd) Role() radio.Mode {
	return fe.role
}

// Listening reports whether the front-end would receive a packet now.
func (fe *FrontEnd) Listening() bool {
	return fe.configured && fe.role == radio.ModeReceive && fe.ce.Level() == hal.High
}

// Sent returns the payloads transmitted.
func (fe *FrontEnd) Sent() [][]byte {
	return fe.sent
}

// Received returns the payloads delivered by the air.
func (fe *FrontEnd) Received() [][]byte {
	return fe.received
}

// Malformed counts latches with an unexpected number of bits.
func (fe *FrontEnd) Malformed() int {
	return fe.malformed
}

// StickDataReady keeps DR asserted after a read-out when set.
func (fe *FrontEnd) StickDataReady(stuck bool) {
	fe.stuckDR = stuck
	if !stuck && fe.rxBits == nil {
		fe.dr.Drive(fe, hal.Low)
	}
}

func (fe *FrontEnd) resetShift() {
	fe.shift = fe.shift[:0]
}

func (fe *FrontEnd) onClockRise() {
	switch {
	case fe.cs.Level() == hal.High:
		fe.shift = append(fe.shift, bool(fe.data.Level()))
	case fe.role == radio.ModeTransmit && fe.ce.Level() == hal.High:
		fe.shift = append(fe.shift, bool(fe.data.Level()))
	case fe.role == radio.ModeReceive && fe.rxBits != nil && fe.rxPos < len(fe.rxBits):
		fe.data.Drive(fe, hal.Level(fe.rxBits[fe.rxPos]))
		fe.rxPos++
	}
}

func (fe *FrontEnd) onClockFall() {
	if fe.rxBits != nil && fe.rxPos >= len(fe.rxBits) {
		fe.rxBits, fe.rxPos = nil, 0
		fe.data.Release(fe)
		if !fe.stuckDR {
			fe.dr.Drive(fe, hal.Low)
		}
	}
}

func (fe *FrontEnd) onSelectFall() {
	defer fe.resetShift()
	switch len(fe.shift) {
	case radio.ConfigWordBits:
		var word radio.ConfigWord
		copy(word[:], radio.BytesOf(fe.shift))
		fe.params = radio.ParseConfigWord(word)
		fe.role = fe.params.Role
		fe.configured = true
		glog.V(3).Infof("%s: configured %s", fe.Name, word)
	case 1:
		if fe.shift[0] {
			fe.role = radio.ModeReceive
		} else {
			fe.role = radio.ModeTransmit
		}
		glog.V(3).Infof("%s: role %s", fe.Name, fe.role)
	case 0:
	default:
		fe.malformed++
		glog.Warningf("%s: ignored %d bits shifted under CS", fe.Name, len(fe.shift))
	}
}

func (fe *FrontEnd) onEnableRise() {
	if fe.role == radio.ModeTransmit {
		fe.resetShift()
	}
}

func (fe *FrontEnd) onEnableFall() {
	if fe.role != radio.ModeTransmit || !fe.configured || len(fe.shift) == 0 {
		return
	}
	defer fe.resetShift()
	addrBits, payloadBits := fe.params.AddrWidth*8, fe.params.PayloadWidth*8
	if len(fe.shift) != addrBits+payloadBits {
		fe.malformed++
		glog.Warningf("%s: ignored packet of %d bits", fe.Name, len(fe.shift))
		return
	}
	frame := radio.BytesOf(fe.shift)
	fe.sent = append(fe.sent, frame[len(frame)-fe.params.PayloadWidth:])
	fe.air.transmit(fe, frame)
}

func (fe *FrontEnd) deliver(payload []byte) {
	fe.received = append(fe.received, payload)
	fe.rxBits, fe.rxPos = bitsOf(payload), 0
	fe.dr.Drive(fe, hal.High)
}

func (fe *FrontEnd) accepts(from *FrontEnd, frame []byte) bool {
	if fe == from || !fe.Listening() {
		return false
	}
	p, q := fe.params, from.params
	if p.Channel != q.Channel || p.PayloadWidth != q.PayloadWidth || p.AddrWidth != q.AddrWidth {
		return false
	}
	addr := p.NodeAddress()
	for n, b := range addr {
		if frame[n] != b {
			return false
		}
	}
	return true
}

func bitsOf(data []byte) []bool {
	bits := make([]bool, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, b>>uint(i)&1 != 0)
		}
	}
	return bits
}

// Frame is a packet seen on air.
type Frame struct {
	At        time.Duration
	From      string
	Payload   []byte
	Delivered []string
}

// Air carries frames between attached front-ends.
type Air struct {
	// Latency is the delay between CE falling on the sender and DR
	// rising on receivers.
	Latency time.Duration

	frontEnds []*FrontEnd
	frames    []Frame
}

// DefaultLatency is roughly the air time of a short ShockBurst packet.
const DefaultLatency = 200 * time.Microsecond

// NewAir creates an Air.
func NewAir() *Air {
	return &Air{Latency: DefaultLatency}
}

// Frames returns every transmitted frame.
func (a *Air) Frames() []Frame {
	return a.frames
}

func (a *Air) transmit(from *FrontEnd, frame []byte) {
	payload := frame[len(frame)-from.params.PayloadWidth:]
	idx := len(a.frames)
	a.frames = append(a.frames, Frame{At: from.clock.Now(), From: from.Name, Payload: payload})
	from.clock.After(a.Latency, func() {
		for _, fe := range a.frontEnds {
			if fe.accepts(from, frame) {
				data := make([]byte, len(payload))
				copy(data, payload)
				fe.deliver(data)
				a.frames[idx].Delivered = append(a.frames[idx].Delivered, fe.Name)
			}
		}
	})
}
