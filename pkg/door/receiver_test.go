package door

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
)

type receiverRig struct {
	radio   *fakeRadio
	console *textConsole
	board   *sim.Board
	recv    *Receiver
	now     time.Time
}

func newReceiverRig(t *testing.T) *receiverRig {
	board := sim.NewBench().NewBoard("door")
	pin, err := board.Pin("RELAY")
	require.NoError(t, err)
	r := &receiverRig{
		radio:   newFakeRadio(),
		console: &textConsole{},
		board:   board,
		now:     time.Unix(100, 0),
	}
	r.recv = NewReceiver("door", r.radio, NewActuator(pin)).WithConsole(r.console)
	require.NoError(t, r.recv.Init())
	return r
}

func (r *receiverRig) poll(t *testing.T) []msgs.EventKind {
	r.now = r.now.Add(10 * time.Millisecond)
	events, err := r.recv.Poll(r.now)
	require.NoError(t, err)
	kinds := make([]msgs.EventKind, 0, len(events))
	for _, ev := range events {
		require.Equal(t, "door", ev.Unit)
		require.Equal(t, r.now, ev.Time())
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (r *receiverRig) relay() hal.Level {
	return r.board.SimPin("RELAY").Read()
}

func TestReceiverOpensOnValidPayload(t *testing.T) {
	r := newReceiverRig(t)
	require.Equal(t, TextBanner, r.console.take())
	require.Equal(t, hal.Low, r.relay())

	require.Empty(t, r.poll(t))
	require.Equal(t, "Waiting", r.console.take())
	require.Empty(t, r.poll(t))
	require.Empty(t, r.console.take())

	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	require.Equal(t, []msgs.EventKind{msgs.EventSignal, msgs.EventOpened}, r.poll(t))
	require.Equal(t, "Signal654321Correct", r.console.take())
	require.True(t, r.recv.IsOpen())
	require.Equal(t, hal.High, r.relay())

	require.Empty(t, r.poll(t))
	require.Equal(t, "WaitingOpen      ", r.console.take())
	require.Equal(t, []radio.Mode{radio.ModeReceive, radio.ModeReceive}, r.radio.modes)
	require.Equal(t, ReceiverStats{Signals: 1, Opened: 1}, r.recv.Stats())
}

func TestReceiverClosesAfterThreshold(t *testing.T) {
	r := newReceiverRig(t)
	r.recv.OpenThreshold = 3
	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	r.poll(t)
	r.console.take()

	for n := 0; n < 3; n++ {
		require.Empty(t, r.poll(t))
		require.True(t, r.recv.IsOpen())
	}
	events, err := r.recv.Poll(r.now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, msgs.EventClosed, events[0].Kind)
	require.EqualValues(t, 4, events[0].Count)
	require.False(t, r.recv.IsOpen())
	require.Equal(t, hal.Low, r.relay())
	require.Equal(t, "Waiting"+"Open      Open      Open      Open      ", r.console.take())

	require.Empty(t, r.poll(t))
	require.Empty(t, r.console.take())
}

func TestReceiverReopenResetsCount(t *testing.T) {
	r := newReceiverRig(t)
	r.recv.OpenThreshold = 2
	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	r.poll(t)
	r.poll(t)
	r.poll(t)
	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	r.poll(t)
	r.poll(t)
	r.poll(t)
	require.True(t, r.recv.IsOpen())
	require.Equal(t, []msgs.EventKind{msgs.EventClosed}, r.poll(t))
}

func TestReceiverRejects(t *testing.T) {
	r := newReceiverRig(t)
	r.poll(t)
	r.console.take()
	r.radio.inbox = [][]byte{{1, 2, 3, 4, 5, 6}}
	require.Equal(t, []msgs.EventKind{msgs.EventSignal, msgs.EventRejected}, r.poll(t))
	require.Equal(t, "Signal123456", r.console.take())
	require.False(t, r.recv.IsOpen())
	require.Equal(t, hal.Low, r.relay())
	require.Equal(t, 1, r.recv.Stats().Rejected)
}

func TestReceiverFaults(t *testing.T) {
	r := newReceiverRig(t)
	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	r.radio.recvErr = radio.ErrDataReadyStuck
	r.now = r.now.Add(time.Second)
	events, err := r.recv.Poll(r.now)
	require.Equal(t, radio.ErrDataReadyStuck, err)
	require.Len(t, events, 2)
	require.Equal(t, msgs.EventFault, events[1].Kind)
	require.Equal(t, radio.ErrDataReadyStuck.Error(), events[1].Detail)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, events[1].Payload)
	require.False(t, r.recv.IsOpen())

	r.radio.modeErr = errors.New("pin gone")
	events, err = r.recv.Poll(r.now)
	require.Equal(t, r.radio.modeErr, err)
	require.Equal(t, msgs.EventFault, events[0].Kind)
	require.Equal(t, 2, r.recv.Stats().Faults)
}

func TestReceiverStatus(t *testing.T) {
	r := newReceiverRig(t)
	r.radio.inbox = [][]byte{{6, 5, 4, 3, 2, 1}}
	r.poll(t)
	st := r.recv.Status()
	require.Equal(t, "door", st.Unit)
	require.Equal(t, "receive", st.Role)
	require.True(t, st.Open)
	require.EqualValues(t, 2, st.Events)
}
