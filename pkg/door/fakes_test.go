package door

import (
	"strconv"
	"strings"
	"time"

	"github.com/robotalks/rfdoor/pkg/radio"
	"github.com/robotalks/rfdoor/pkg/serial"
)

var (
	_ Radio      = (*radio.Driver)(nil)
	_ SerialPort = (*serial.Engine)(nil)
)

type fakeRadio struct {
	width   int
	modes   []radio.Mode
	inbox   [][]byte
	sent    [][]byte
	modeErr error
	recvErr error
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{width: 6}
}

func (r *fakeRadio) SetMode(m radio.Mode) error {
	if r.modeErr != nil {
		return r.modeErr
	}
	r.modes = append(r.modes, m)
	return nil
}

func (r *fakeRadio) HasData() bool {
	return len(r.inbox) > 0
}

func (r *fakeRadio) ReceivePacketWithin(time.Duration) ([]byte, error) {
	buf := r.inbox[0]
	if r.recvErr == nil {
		r.inbox = r.inbox[1:]
	}
	return buf, r.recvErr
}

func (r *fakeRadio) TransmitPacket(buf []byte) error {
	if len(buf) != r.width {
		return radio.ErrPayloadSize
	}
	r.sent = append(r.sent, append([]byte(nil), buf...))
	return nil
}

func (r *fakeRadio) PayloadWidth() int {
	return r.width
}

type textConsole struct {
	strings.Builder
}

func (c *textConsole) WriteLine(text string) {
	c.WriteString(text)
}

func (c *textConsole) WriteDecimal(b byte) {
	c.WriteString(strconv.Itoa(int(b)))
}

func (c *textConsole) take() string {
	s := c.String()
	c.Reset()
	return s
}

type fakePort struct {
	textConsole
	inbox []byte
	armed int
}

func (p *fakePort) WriteByte(b byte) error {
	return p.textConsole.WriteByte(b)
}

func (p *fakePort) ArmReceive() {
	p.armed++
}

func (p *fakePort) PollReceivedByte() (byte, bool) {
	if len(p.inbox) == 0 {
		return 0, false
	}
	b := p.inbox[0]
	p.inbox = p.inbox[1:]
	return b, true
}
