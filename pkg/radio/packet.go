package radio

import (
	"time"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// TransmitPacket clocks the node address and the payload in with CE high
// and drops CE to send it. The driver must be in transmit mode; that is
// not checked.
func (d *Driver) TransmitPacket(buf []byte) error {
	if len(buf) != d.width {
		return ErrPayloadSize
	}
	s := d.seq()
	s.set(d.lines.CE, hal.High)
	s.delay(d.Timing.Select)
	for _, b := range d.address {
		s.putByte(b)
	}
	for _, b := range buf {
		s.putByte(b)
	}
	s.set(d.lines.CE, hal.Low)
	s.set(d.lines.CLK, hal.Low)
	return s.err
}

// HasData samples DR.
func (d *Driver) HasData() bool {
	return d.lines.DR.Read() == hal.High
}

// ReceivePacket clocks a payload out of the front-end, waits for DR to
// clear and raises CE to keep listening. The wait is unbounded: a
// front-end that never clears DR hangs the caller. Use
// ReceivePacketWithin to bound it.
func (d *Driver) ReceivePacket() []byte {
	buf, _ := d.receive(0)
	return buf
}

// ReceivePacketWithin is ReceivePacket with the DR wait bounded by
// timeout. On timeout the payload read is returned with
// ErrDataReadyStuck and CE is left as it was.
func (d *Driver) ReceivePacketWithin(timeout time.Duration) ([]byte, error) {
	return d.receive(timeout)
}

func (d *Driver) receive(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, d.width)
	s := d.seq()
	for n := range buf {
		buf[n] = s.getByte()
	}
	s.set(d.lines.CLK, hal.Low)
	if s.err != nil {
		return buf, s.err
	}
	if !hal.WaitUntil(d.clock, func() bool { return !d.HasData() }, timeout) {
		return buf, ErrDataReadyStuck
	}
	s.set(d.lines.CE, hal.High)
	return buf, s.err
}
