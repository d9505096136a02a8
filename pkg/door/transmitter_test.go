package door

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
)

func newButton(t *testing.T, board *sim.Board) *Button {
	pin, err := board.Pin("BTN")
	require.NoError(t, err)
	return NewButton(pin)
}

func TestButtonDebounce(t *testing.T) {
	board := sim.NewBench().NewBoard("key")
	b := newButton(t, board)
	require.NoError(t, b.Init())
	line := board.SimPin("BTN").Line()

	require.False(t, b.Poll())
	line.Drive(t, hal.Low)
	require.False(t, b.Poll())
	require.False(t, b.Poll())
	require.True(t, b.Poll())

	line.Release(t)
	require.True(t, b.Poll())
	line.Drive(t, hal.Low)
	require.True(t, b.Poll())
	line.Release(t)
	require.True(t, b.Poll())
	require.True(t, b.Poll())
	require.False(t, b.Poll())
	require.False(t, b.Pressed())
}

func TestActuatorActiveLow(t *testing.T) {
	board := sim.NewBench().NewBoard("u")
	pin, err := board.Pin("LED")
	require.NoError(t, err)
	a := NewActuator(pin)
	a.ActiveLow = true
	require.NoError(t, a.Init())
	require.Equal(t, hal.High, pin.Read())
	require.NoError(t, a.Set(true))
	require.Equal(t, hal.Low, pin.Read())
	require.True(t, a.IsOn())
}

func TestTransmitterSendsWhilePressed(t *testing.T) {
	board := sim.NewBench().NewBoard("key")
	btn := newButton(t, board)
	btn.Debounce = 1
	led, err := board.Pin("LED")
	require.NoError(t, err)
	r := newFakeRadio()
	tx := NewTransmitter("key", r, btn).WithLED(NewActuator(led))
	require.NoError(t, tx.Init())

	at := time.Unix(0, 0)
	poll := func(d time.Duration) *msgs.DoorEvent {
		ev, err := tx.Poll(at.Add(d))
		require.NoError(t, err)
		return ev
	}
	require.Nil(t, poll(0))
	require.Equal(t, []radio.Mode{radio.ModeTransmit}, r.modes)
	require.Equal(t, hal.Low, led.Read())

	board.SimPin("BTN").Line().Drive(t, hal.Low)
	ev := poll(10 * time.Millisecond)
	require.NotNil(t, ev)
	require.Equal(t, msgs.EventSent, ev.Kind)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, ev.Payload)
	require.Equal(t, hal.High, led.Read())

	require.Nil(t, poll(30*time.Millisecond))
	require.NotNil(t, poll(60*time.Millisecond))
	require.Nil(t, poll(100*time.Millisecond))
	ev = poll(110 * time.Millisecond)
	require.NotNil(t, ev)
	require.EqualValues(t, 3, ev.Count)

	board.SimPin("BTN").Line().Release(t)
	require.Nil(t, poll(200*time.Millisecond))
	require.Equal(t, hal.Low, led.Read())
	require.Equal(t, 3, tx.Sent())
	require.Len(t, r.sent, 3)
	require.Equal(t, []radio.Mode{radio.ModeTransmit}, r.modes)
	require.Equal(t, "transmit", tx.Status().Role)
}

func TestTransmitterWithoutButton(t *testing.T) {
	r := newFakeRadio()
	tx := NewTransmitter("key", r, nil)
	tx.Interval = 0
	require.NoError(t, tx.Init())
	for n := 0; n < 3; n++ {
		_, err := tx.Poll(time.Unix(int64(n), 0))
		require.NoError(t, err)
	}
	require.Len(t, r.sent, 3)
}

func TestTransmitterPayloadError(t *testing.T) {
	r := newFakeRadio()
	tx := NewTransmitter("key", r, nil).WithPayload([]byte{1, 2})
	ev, err := tx.Poll(time.Unix(1, 0))
	require.Equal(t, radio.ErrPayloadSize, err)
	require.Equal(t, msgs.EventFault, ev.Kind)
	require.Zero(t, tx.Sent())
}
