package radio

import (
	"time"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// Timing holds the settle delays of the three wire interface.
type Timing struct {
	// Clock is held after each clock edge.
	Clock time.Duration
	// Select is held after raising CS or CE before clocking.
	Select time.Duration
	// PowerUp is waited before the configuration is shifted in.
	PowerUp time.Duration
}

// DefaultTiming follows the nRF2401 datasheet minimums.
var DefaultTiming = Timing{
	Clock:   time.Microsecond,
	Select:  10 * time.Microsecond,
	PowerUp: 3 * time.Millisecond,
}

// Lines are the pins wired to the front-end.
type Lines struct {
	CE   hal.Pin
	CS   hal.Pin
	CLK  hal.Pin
	DATA hal.Pin
	DR   hal.Pin
}

// LineNames name the pins on a board.
type LineNames struct {
	CE   string `yaml:"ce"`
	CS   string `yaml:"cs"`
	CLK  string `yaml:"clk"`
	DATA string `yaml:"data"`
	DR   string `yaml:"dr"`
}

// DefaultLineNames are the names used by simulated boards.
var DefaultLineNames = LineNames{CE: "CE", CS: "CS", CLK: "CLK1", DATA: "DATA", DR: "DR1"}

// Open resolves the names on a board.
func (n LineNames) Open(board hal.Board) (lines Lines, err error) {
	for _, item := range []struct {
		name string
		pin  *hal.Pin
	}{
		{n.CE, &lines.CE},
		{n.CS, &lines.CS},
		{n.CLK, &lines.CLK},
		{n.DATA, &lines.DATA},
		{n.DR, &lines.DR},
	} {
		if *item.pin, err = board.Pin(item.name); err != nil {
			return
		}
	}
	return
}

// Driver bit-bangs the front-end. It keeps no state the hardware can't
// confirm except what it last wrote: the payload width and node address
// from the configuration word and the mode last set.
type Driver struct {
	Timing Timing

	lines   Lines
	clock   hal.Clock
	width   int
	address []byte
	mode    Mode
}

// New creates a Driver. Until Configure the default params apply.
func New(lines Lines, clock hal.Clock) *Driver {
	params := DefaultParams()
	return &Driver{
		Timing:  DefaultTiming,
		lines:   lines,
		clock:   clock,
		width:   params.PayloadWidth,
		address: params.NodeAddress(),
		mode:    ModeConfigure,
	}
}

// NewOnBoard resolves line names on a board and creates a Driver.
func NewOnBoard(board hal.Board, names LineNames) (*Driver, error) {
	lines, err := names.Open(board)
	if err != nil {
		return nil, err
	}
	return New(lines, board.Clock()), nil
}

// WithTiming sets the timing.
func (d *Driver) WithTiming(t Timing) *Driver {
	d.Timing = t
	return d
}

// Mode returns the mode last set.
func (d *Driver) Mode() Mode {
	return d.mode
}

// PayloadWidth returns the payload size in bytes.
func (d *Driver) PayloadWidth() int {
	return d.width
}

// Address returns the node address sent before each payload.
func (d *Driver) Address() []byte {
	return d.address
}

// InitializeLines sets every line direction: CE, CS, CLK and DATA are
// outputs held low, DR is an input.
func (d *Driver) InitializeLines() error {
	s := d.seq()
	s.set(d.lines.CE, hal.Low)
	s.set(d.lines.CS, hal.Low)
	s.set(d.lines.CLK, hal.Low)
	s.set(d.lines.DATA, hal.Low)
	s.input(d.lines.DR)
	return s.err
}

// Configure shifts the word in and latches it on the falling edge of CS.
func (d *Driver) Configure(word ConfigWord) error {
	s := d.seq()
	s.set(d.lines.CE, hal.Low)
	s.set(d.lines.CS, hal.Low)
	s.set(d.lines.CLK, hal.Low)
	s.set(d.lines.DATA, hal.Low)
	s.delay(d.Timing.PowerUp)
	s.set(d.lines.CS, hal.High)
	s.delay(d.Timing.Select)
	for _, b := range word {
		s.putByte(b)
	}
	s.set(d.lines.CE, hal.Low)
	s.set(d.lines.CS, hal.Low)
	s.set(d.lines.CLK, hal.Low)
	if s.err != nil {
		return s.err
	}
	params := ParseConfigWord(word)
	d.width, d.address = params.PayloadWidth, params.NodeAddress()
	d.mode = ModeConfigure
	return nil
}

// SetMode switches between transmit and receive by shifting the RXEN bit
// alone. In receive mode CE is raised and DATA is released to the
// front-end.
func (d *Driver) SetMode(mode Mode) error {
	var rxen hal.Level
	switch mode {
	case ModeTransmit:
	case ModeReceive:
		rxen = hal.High
	default:
		return ErrInvalidMode
	}
	s := d.seq()
	s.set(d.lines.CE, hal.Low)
	s.set(d.lines.CS, hal.High)
	s.delay(d.Timing.Select)
	s.set(d.lines.DATA, rxen)
	s.set(d.lines.CLK, hal.High)
	s.delay(d.Timing.Clock)
	s.set(d.lines.CLK, hal.Low)
	s.delay(d.Timing.Clock)
	s.set(d.lines.CS, hal.Low)
	s.set(d.lines.CLK, hal.Low)
	if mode == ModeReceive {
		s.set(d.lines.CE, hal.High)
		s.input(d.lines.DATA)
	}
	if s.err != nil {
		return s.err
	}
	d.mode = mode
	return nil
}

type sequence struct {
	d   *Driver
	err error
}

func (d *Driver) seq() *sequence {
	return &sequence{d: d}
}

func (s *sequence) set(pin hal.Pin, level hal.Level) {
	if s.err == nil {
		s.err = pin.Out(level)
	}
}

func (s *sequence) input(pin hal.Pin) {
	if s.err == nil {
		s.err = pin.In(hal.Float)
	}
}

func (s *sequence) delay(d time.Duration) {
	if s.err == nil && d > 0 {
		s.d.clock.Delay(d)
	}
}

// putByte clocks b out MSB first; the front-end samples on the rising edge.
func (s *sequence) putByte(b byte) {
	l := s.d.lines
	for i := 0; i < 8 && s.err == nil; i++ {
		s.set(l.CLK, hal.Low)
		s.set(l.DATA, hal.Level(b&0x80 != 0))
		b <<= 1
		s.delay(s.d.Timing.Clock)
		s.set(l.CLK, hal.High)
		s.delay(s.d.Timing.Clock)
	}
}

// getByte clocks a byte in MSB first, reading before the falling edge.
func (s *sequence) getByte() (b byte) {
	l := s.d.lines
	for i := 0; i < 8 && s.err == nil; i++ {
		s.set(l.CLK, hal.Low)
		s.delay(s.d.Timing.Clock)
		s.set(l.CLK, hal.High)
		s.delay(s.d.Timing.Clock)
		b <<= 1
		if l.DATA.Read() == hal.High {
			b |= 1
		}
	}
	return
}
