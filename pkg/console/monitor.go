package console

import (
	"context"
	"time"

	"github.com/robotalks/rfdoor/pkg/msgs"
)

// Monitor turns console events of a receiver unit into door events.
// A payload followed by Correct is an opening, one followed by Waiting is
// a rejection. The door is taken as closed when the console went idle
// after printing Open.
type Monitor struct {
	Unit string
	Emit func(*msgs.DoorEvent)
	Now  func() time.Time

	open     bool
	signaled bool
	raw      bool
	payload  []byte
	opens    uint32
}

// NewMonitor creates a Monitor.
func NewMonitor(unit string, emit func(*msgs.DoorEvent)) *Monitor {
	return &Monitor{Unit: unit, Emit: emit, Now: time.Now}
}

// IsOpen reports the door state seen on the console.
func (m *Monitor) IsOpen() bool {
	return m.open
}

// HandleEvent implements Handler.
func (m *Monitor) HandleEvent(_ context.Context, ev Event) {
	switch ev.Kind {
	case EventSignal, EventData:
		m.signaled, m.raw, m.payload = true, ev.Kind == EventData, nil
		m.emit(msgs.EventSignal, nil)
	case EventPayload:
		if m.signaled {
			m.payload = ev.Payload
		}
	case EventCorrect:
		m.open, m.signaled = true, false
		m.opens++
		m.emit(msgs.EventOpened, m.payload).Count = m.opens
	case EventWaiting:
		if m.signaled && !m.raw {
			m.emit(msgs.EventRejected, m.payload)
		}
		m.signaled = false
	case EventOpen:
		m.open = true
	case EventIdle:
		if m.open {
			m.open = false
			m.emit(msgs.EventClosed, nil)
		}
	}
}

func (m *Monitor) emit(kind msgs.EventKind, payload []byte) *msgs.DoorEvent {
	ev := msgs.NewDoorEvent(m.Unit, kind, m.Now())
	ev.Payload = payload
	if m.Emit != nil {
		m.Emit(ev)
	}
	return ev
}
