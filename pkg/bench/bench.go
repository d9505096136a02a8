// Package bench wires a door unit and a handheld on simulated boards
// sharing one virtual clock and one air, plus a host serial port on the
// door's console.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/rfdoor/pkg/comm/cache"
	"github.com/robotalks/rfdoor/pkg/config"
	"github.com/robotalks/rfdoor/pkg/door"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio/rfsim"
	"github.com/robotalks/rfdoor/pkg/serial"
)

// Unit is one simulated board running a unit config.
type Unit struct {
	*config.Hardware
	Config   *config.Config
	Board    *sim.Board
	FrontEnd *rfsim.FrontEnd
}

// LineName returns the recorded line name of a pin of the unit.
func (u *Unit) LineName(pin string) string {
	return u.Board.SimPin(pin).Line().Name()
}

// Bench is the simulated pair.
type Bench struct {
	Sim  *sim.Bench
	Air  *rfsim.Air
	Door *Unit
	Key  *Unit
	// Host is the serial port wired to the door's console.
	Host        *serial.Engine
	Receiver    *door.Receiver
	Transmitter *door.Transmitter
	Loop        *fx.Loop
	Status      *cache.Tracker

	epoch      time.Time
	poll       time.Duration
	consoleTX  string
	serialMark time.Duration
	events     []*msgs.DoorEvent
}

// DefaultConfigs returns the door and handheld configs of the bench.
func DefaultConfigs() (doorConf, keyConf *config.Config) {
	doorConf = config.NewConfig()
	doorConf.Unit = config.UnitConfig{ID: "door", Role: config.RoleReceiver}
	doorConf.Events = config.EventsConfig{}
	keyConf = config.NewConfig()
	keyConf.Unit = config.UnitConfig{ID: "key", Role: config.RoleTransmitter}
	keyConf.Pins.Actuator = "LED"
	keyConf.Pins.SerialTX, keyConf.Pins.SerialRX = "", ""
	keyConf.Events = config.EventsConfig{}
	return
}

// NewDefault creates a bench from DefaultConfigs.
func NewDefault() (*Bench, error) {
	return New(DefaultConfigs())
}

// New creates a bench and initializes both units.
func New(doorConf, keyConf *config.Config) (*Bench, error) {
	if doorConf.Pins.SerialTX == "" {
		return nil, fmt.Errorf("door unit needs serial pins")
	}
	b := &Bench{
		Sim:    sim.NewBench(),
		Air:    rfsim.NewAir(),
		Status: &cache.Tracker{Store: cache.NewMemory()},
		epoch:  time.Unix(0, 0),
		poll:   doorConf.Door.PollInterval,
	}
	doorBoard := b.Sim.NewBoard(doorConf.UnitID())
	hostBoard := b.Sim.NewBoard("host")
	b.consoleTX = doorBoard.LineName(doorConf.Pins.SerialTX)
	sim.Wire(b.consoleTX, doorBoard, doorConf.Pins.SerialTX, hostBoard, "RX")
	sim.Wire(doorBoard.LineName(doorConf.Pins.SerialRX), hostBoard, "TX", doorBoard, doorConf.Pins.SerialRX)

	var err error
	if b.Door, err = b.newUnit(doorConf, doorBoard); err != nil {
		return nil, fmt.Errorf("door: %w", err)
	}
	if b.Key, err = b.newUnit(keyConf, b.Sim.NewBoard(keyConf.UnitID())); err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	b.Host, err = serial.NewOnBoard(hostBoard, "TX", "RX")
	if err != nil {
		return nil, err
	}
	b.Host.WithTiming(doorConf.SerialTiming())
	if err = b.Host.Init(); err != nil {
		return nil, err
	}

	if b.Receiver, err = doorConf.NewReceiver(b.Door.Hardware); err != nil {
		return nil, err
	}
	b.Transmitter = keyConf.NewTransmitter(b.Key.Hardware)
	if err = b.Receiver.Init(); err != nil {
		return nil, err
	}
	if err = b.Transmitter.Init(); err != nil {
		return nil, err
	}

	b.Loop = fx.NewLoop()
	b.Loop.Now = b.Now
	b.Loop.OnError = func(err error) { glog.Warningf("bench: %v", err) }
	b.Loop.Add(b.Receiver, b.Transmitter)
	b.Loop.AddController(fx.StageReport, fx.ControlFunc(b.collect))
	return b, nil
}

func (b *Bench) newUnit(conf *config.Config, board *sim.Board) (*Unit, error) {
	u := &Unit{Config: conf, Board: board}
	u.FrontEnd = b.Air.Attach(board.Name(), board, conf.Pins.Radio)
	h, err := conf.Open(board)
	if err != nil {
		return nil, err
	}
	if err = h.Init(); err != nil {
		return nil, err
	}
	u.Hardware = h
	return u, nil
}

func (b *Bench) collect(cc fx.ControlContext) error {
	cc.Messages().Each(func(m fx.Message) bool {
		ev, ok := m.(*msgs.DoorEvent)
		if !ok {
			return false
		}
		b.events = append(b.events, ev)
		if _, err := b.Status.Apply(ev.Unit, ev); err != nil {
			glog.Warningf("bench status %s: %v", ev.Unit, err)
		}
		return true
	})
	return nil
}

// Now maps virtual time to wall time starting at the Unix epoch.
func (b *Bench) Now() time.Time {
	return b.epoch.Add(b.Sim.Clock.Now())
}

// Elapsed returns the virtual time.
func (b *Bench) Elapsed() time.Duration {
	return b.Sim.Clock.Now()
}

// Poll returns the poll interval.
func (b *Bench) Poll() time.Duration {
	return b.poll
}

// Steps runs n loop iterations, one per poll interval.
func (b *Bench) Steps(n int) {
	for ; n > 0; n-- {
		b.Loop.Step(context.Background())
		b.Sim.Clock.RunFor(b.poll)
	}
}

// Step runs the loop for about d of virtual time, at least one iteration,
// and returns the number of iterations.
func (b *Bench) Step(d time.Duration) int {
	n := int(d / b.poll)
	if n < 1 {
		n = 1
	}
	b.Steps(n)
	return n
}

// Hold presses or releases the handheld button.
func (b *Bench) Hold(pressed bool) error {
	if b.Key.Button == nil {
		return fmt.Errorf("key has no button")
	}
	line := b.Key.Board.SimPin(b.Key.Config.Pins.Button).Line()
	if pressed == b.Key.Button.ActiveLow {
		line.Drive(b, hal.Low)
	} else {
		line.Drive(b, hal.High)
	}
	return nil
}

// Press holds the button for polls iterations, releases it and runs
// until the release is debounced.
func (b *Bench) Press(polls int) error {
	if err := b.Hold(true); err != nil {
		return err
	}
	b.Steps(polls)
	line := b.Key.Board.SimPin(b.Key.Config.Pins.Button).Line()
	line.Release(b)
	b.Steps(b.Key.Button.Debounce)
	return nil
}

// Events returns the events reported so far.
func (b *Bench) Events() []*msgs.DoorEvent {
	return append([]*msgs.DoorEvent(nil), b.events...)
}

// SendSerial writes text from the host to the door console and returns
// the bytes the door's engine received.
func (b *Bench) SendSerial(text string) []byte {
	var got []byte
	for i := 0; i < len(text); i++ {
		b.Door.Serial.ArmReceive()
		b.Host.TransmitByte(text[i])
		if c, ok := b.Door.Serial.PollReceivedByte(); ok {
			got = append(got, c)
		}
	}
	return got
}

// ReceiveSerial decodes what the door printed since the last call.
func (b *Bench) ReceiveSerial() []byte {
	now := b.Sim.Clock.Now()
	data, next := DecodeSerial(b.Sim.Recorder, b.consoleTX, b.serialMark, now, b.Door.Serial.Timing)
	b.serialMark = next
	return data
}

// Trace returns the last n transitions of a line, all when n <= 0.
func (b *Bench) Trace(line string, n int) []sim.Transition {
	trs := b.Sim.Recorder.Transitions(line)
	if n > 0 && len(trs) > n {
		trs = trs[len(trs)-n:]
	}
	return trs
}

// Lines returns the names of recorded lines in order of first change.
func (b *Bench) Lines() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range b.Sim.Recorder.All() {
		if !seen[t.Line] {
			seen[t.Line] = true
			names = append(names, t.Line)
		}
	}
	return names
}
