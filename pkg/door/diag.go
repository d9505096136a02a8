package door

import (
	"time"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/radio"
)

// EchoTest echoes every byte received on the serial port as
// "c: ddd\r\n". While the button is held the LEDs are lit and a digit
// counting 0..9 is printed each poll.
type EchoTest struct {
	port    SerialPort
	button  *Button
	led     *Actuator
	counter byte
}

// NewEchoTest creates an EchoTest. button and led may be nil.
func NewEchoTest(port SerialPort, button *Button, led *Actuator) *EchoTest {
	return &EchoTest{port: port, button: button, led: led, counter: '0'}
}

// Init arms the receiver.
func (e *EchoTest) Init() error {
	if e.button != nil {
		if err := e.button.Init(); err != nil {
			return err
		}
	}
	if e.led != nil {
		if err := e.led.Init(); err != nil {
			return err
		}
	}
	e.port.ArmReceive()
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (e *EchoTest) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageControl, e)
}

// Control implements framework.Controller.
func (e *EchoTest) Control(fx.ControlContext) error {
	return e.Poll()
}

// Poll runs one pass.
func (e *EchoTest) Poll() error {
	if e.button != nil {
		pressed := e.button.Poll()
		if e.led != nil {
			if err := e.led.Set(pressed); err != nil {
				return err
			}
		}
		if pressed {
			e.counter++
			if e.counter > '9' {
				e.counter = '0'
			}
			e.port.WriteByte(e.counter)
		}
	}
	if c, ok := e.port.PollReceivedByte(); ok {
		e.port.WriteByte(c)
		e.port.WriteLine(": ")
		e.port.WriteDecimal(c)
		e.port.WriteLine("\r\n")
	}
	return nil
}

// RFTest prints every packet received: "Waiting", then "Data" and the
// payload bytes in decimal.
type RFTest struct {
	DataReadyTimeout time.Duration

	radio   Radio
	console Console
	started bool
	waiting bool
	packets int
}

// NewRFTest creates an RFTest.
func NewRFTest(r Radio, console Console) *RFTest {
	return &RFTest{radio: r, console: console}
}

// Packets returns the number of packets read.
func (t *RFTest) Packets() int {
	return t.packets
}

// AddToLoop implements framework.LoopAdder.
func (t *RFTest) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageSense, t)
}

// Control implements framework.Controller.
func (t *RFTest) Control(fx.ControlContext) error {
	return t.Poll()
}

// Poll runs one pass.
func (t *RFTest) Poll() error {
	if !t.started {
		if err := t.radio.SetMode(radio.ModeReceive); err != nil {
			return err
		}
		t.started = true
	}
	if !t.waiting {
		t.console.WriteLine(TextWaiting)
		t.waiting = true
	}
	if !t.radio.HasData() {
		return nil
	}
	t.console.WriteLine(TextData)
	buf, err := t.radio.ReceivePacketWithin(t.DataReadyTimeout)
	for _, b := range buf {
		t.console.WriteDecimal(b)
	}
	t.waiting = false
	t.packets++
	return err
}
