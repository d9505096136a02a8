package door

import (
	"time"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
)

// DefaultInterval is the time between payloads while the button is held.
const DefaultInterval = 50 * time.Millisecond

// Transmitter is the handheld side. It puts the radio in transmit mode
// once and sends the key payload every Interval while the button is
// pressed. Packets are not acknowledged and never resent.
type Transmitter struct {
	Unit     string
	Interval time.Duration

	radio   Radio
	button  *Button
	led     *Actuator
	payload []byte

	ready bool
	last  time.Time
	sent  int
}

// NewTransmitter creates a Transmitter. Without a button it sends
// continuously.
func NewTransmitter(unit string, r Radio, button *Button) *Transmitter {
	return &Transmitter{
		Unit:     unit,
		Interval: DefaultInterval,
		radio:    r,
		button:   button,
		payload:  Payload(r.PayloadWidth()),
	}
}

// WithLED lights led while sending.
func (t *Transmitter) WithLED(led *Actuator) *Transmitter {
	t.led = led
	return t
}

// WithPayload replaces the key payload.
func (t *Transmitter) WithPayload(buf []byte) *Transmitter {
	t.payload = buf
	return t
}

// Init sets up the button and LED.
func (t *Transmitter) Init() error {
	if t.button != nil {
		if err := t.button.Init(); err != nil {
			return err
		}
	}
	if t.led != nil {
		return t.led.Init()
	}
	return nil
}

// Sent returns the number of packets sent.
func (t *Transmitter) Sent() int {
	return t.sent
}

// Status returns the unit status.
func (t *Transmitter) Status() *msgs.UnitStatus {
	return &msgs.UnitStatus{
		Unit:   t.Unit,
		Role:   radio.ModeTransmit.String(),
		Events: uint32(t.sent),
	}
}

// AddToLoop implements framework.LoopAdder.
func (t *Transmitter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageControl, t)
}

// Control implements framework.Controller.
func (t *Transmitter) Control(cc fx.ControlContext) error {
	ev, err := t.Poll(cc.Time())
	if ev != nil {
		cc.Post(ev)
	}
	return err
}

// Poll sends the payload if due and returns the event raised, if any.
func (t *Transmitter) Poll(now time.Time) (*msgs.DoorEvent, error) {
	if !t.ready {
		if err := t.radio.SetMode(radio.ModeTransmit); err != nil {
			ev := msgs.NewDoorEvent(t.Unit, msgs.EventFault, now)
			ev.Detail = err.Error()
			return ev, err
		}
		t.ready = true
	}
	pressed := t.button == nil || t.button.Poll()
	if t.led != nil && t.led.IsOn() != pressed {
		if err := t.led.Set(pressed); err != nil {
			return nil, err
		}
	}
	if !pressed {
		t.last = time.Time{}
		return nil, nil
	}
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return nil, nil
	}
	if err := t.radio.TransmitPacket(t.payload); err != nil {
		ev := msgs.NewDoorEvent(t.Unit, msgs.EventFault, now)
		ev.Detail = err.Error()
		return ev, err
	}
	t.last = now
	t.sent++
	ev := msgs.NewDoorEvent(t.Unit, msgs.EventSent, now)
	ev.Payload, ev.Count = t.payload, uint32(t.sent)
	return ev, nil
}
