package comm

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// EventSink takes serializable messages off the loop and writes them
// as Typed packets.
type EventSink struct {
	Writer PacketWriter
	// Keep leaves messages in the loop for later stages.
	Keep bool

	written int
	failed  int
}

// NewEventSink creates an EventSink.
func NewEventSink(w PacketWriter) *EventSink {
	return &EventSink{Writer: w}
}

// Written returns the number of packets written.
func (s *EventSink) Written() int {
	return s.written
}

// Failed returns the number of packets that failed to write.
func (s *EventSink) Failed() int {
	return s.failed
}

// AddToLoop implements framework.LoopAdder.
func (s *EventSink) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageReport, s)
}

// Control implements framework.Controller.
func (s *EventSink) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	cc.Messages().Each(func(m fx.Message) bool {
		if _, ok := m.(msgs.Serializable); !ok {
			return false
		}
		errs.Add(s.Send(m))
		return !s.Keep
	})
	return errs.Aggregate()
}

// Send encodes and writes a message.
func (s *EventSink) Send(m interface{}) error {
	pkt, err := msgs.EncodeTyped(m)
	if err != nil {
		return err
	}
	if err = s.Writer.WritePacket(pkt); err != nil {
		s.failed++
		return err
	}
	s.written++
	return nil
}

// Dispatcher reads Typed packets and hands decoded messages to Handle.
type Dispatcher struct {
	Reader PacketReader
	Handle func(context.Context, msgs.Serializable)
}

// Run implements framework.Runnable. Undecodable packets are logged and
// skipped. io.EOF ends the run without error.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		pkt, err := d.Reader.ReadPacket()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		msg, err := msgs.DecodeMessage(pkt)
		if err != nil {
			glog.Warningf("drop packet: %v", err)
			continue
		}
		d.Handle(ctx, msg)
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
