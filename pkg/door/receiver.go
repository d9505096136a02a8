package door

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
)

// Receiver is the door side. Each Poll is one pass of the firmware's
// wait loop: put the radio in receive mode once per wait cycle, count
// idle polls while the door is open and close it past OpenThreshold,
// and on data read the packet, print it and open the door if valid.
type Receiver struct {
	Unit string
	// OpenThreshold is the number of idle polls the door stays open.
	OpenThreshold int
	// DataReadyTimeout bounds the wait for DR to clear after a read-out.
	// Zero waits forever.
	DataReadyTimeout time.Duration

	radio   Radio
	door    *Actuator
	console Console

	listening bool
	open      bool
	count     int
	events    int
	stats     ReceiverStats
}

// ReceiverStats counts what happened.
type ReceiverStats struct {
	Signals  int
	Opened   int
	Closed   int
	Rejected int
	Faults   int
}

// NewReceiver creates a Receiver.
func NewReceiver(unit string, r Radio, door *Actuator) *Receiver {
	return &Receiver{
		Unit:          unit,
		OpenThreshold: DefaultOpenThreshold,
		radio:         r,
		door:          door,
		console:       Discard,
	}
}

// WithConsole sets the console.
func (r *Receiver) WithConsole(c Console) *Receiver {
	r.console = c
	return r
}

// Init closes the door and prints the banner.
func (r *Receiver) Init() error {
	if err := r.door.Init(); err != nil {
		return err
	}
	r.console.WriteLine(TextBanner)
	return nil
}

// IsOpen reports whether the door is open.
func (r *Receiver) IsOpen() bool {
	return r.open
}

// Stats returns the counters.
func (r *Receiver) Stats() ReceiverStats {
	return r.stats
}

// Status returns the unit status.
func (r *Receiver) Status() *msgs.UnitStatus {
	return &msgs.UnitStatus{
		Unit:   r.Unit,
		Role:   radio.ModeReceive.String(),
		Open:   r.open,
		Events: uint32(r.events),
	}
}

// AddToLoop implements framework.LoopAdder.
func (r *Receiver) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageSense, r)
}

// Control implements framework.Controller.
func (r *Receiver) Control(cc fx.ControlContext) error {
	events, err := r.Poll(cc.Time())
	for _, ev := range events {
		cc.Post(ev)
	}
	return err
}

// Poll runs one pass and returns the events raised.
func (r *Receiver) Poll(now time.Time) (events []*msgs.DoorEvent, err error) {
	emit := func(kind msgs.EventKind) *msgs.DoorEvent {
		ev := msgs.NewDoorEvent(r.Unit, kind, now)
		events = append(events, ev)
		r.events++
		return ev
	}

	if !r.listening {
		if err = r.radio.SetMode(radio.ModeReceive); err != nil {
			r.stats.Faults++
			emit(msgs.EventFault).Detail = err.Error()
			return
		}
		r.listening = true
		r.console.WriteLine(TextWaiting)
	}

	if !r.radio.HasData() {
		if r.open {
			r.console.WriteLine(TextOpen)
			r.count++
			if r.count > r.OpenThreshold {
				if err = r.door.Set(false); err != nil {
					return
				}
				r.open = false
				r.stats.Closed++
				emit(msgs.EventClosed).Count = uint32(r.count)
				r.count = 0
				glog.V(1).Infof("%s: door closed", r.Unit)
			}
		}
		return
	}

	r.listening = false
	r.stats.Signals++
	r.console.WriteLine(TextSignal)
	emit(msgs.EventSignal)

	buf, err := r.radio.ReceivePacketWithin(r.DataReadyTimeout)
	for _, b := range buf {
		r.console.WriteDecimal(b)
	}
	if err != nil {
		r.stats.Faults++
		ev := emit(msgs.EventFault)
		ev.Payload, ev.Detail = buf, err.Error()
		glog.Warningf("%s: receive: %v", r.Unit, err)
		return
	}

	if len(buf) == 0 || !ValidPayload(buf) {
		r.stats.Rejected++
		ev := emit(msgs.EventRejected)
		ev.Payload, ev.Count = buf, uint32(r.stats.Rejected)
		glog.V(1).Infof("%s: rejected %v", r.Unit, buf)
		return
	}
	if err = r.door.Set(true); err != nil {
		return
	}
	r.open, r.count = true, 0
	r.stats.Opened++
	r.console.WriteLine(TextCorrect)
	ev := emit(msgs.EventOpened)
	ev.Payload, ev.Count = buf, uint32(r.stats.Opened)
	glog.V(1).Infof("%s: door opened", r.Unit)
	return
}
