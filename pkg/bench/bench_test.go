package bench

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/door"
	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
)

func kinds(events []*msgs.DoorEvent) []msgs.EventKind {
	res := make([]msgs.EventKind, len(events))
	for n, ev := range events {
		res[n] = ev.Kind
	}
	return res
}

func TestPressOpensAndCloses(t *testing.T) {
	b, err := NewDefault()
	require.NoError(t, err)
	require.True(t, b.Door.FrontEnd.Configured())
	require.Equal(t, radio.ModeReceive, b.Door.FrontEnd.Params().Role)
	require.Equal(t, radio.ModeTransmit, b.Key.FrontEnd.Params().Role)

	b.Steps(2)
	require.Empty(t, b.Events())
	require.True(t, b.Door.FrontEnd.Listening())

	require.NoError(t, b.Press(6))
	require.True(t, b.Receiver.IsOpen())
	require.Equal(t, hal.High, b.Door.Board.SimPin("RELAY").Read())
	require.True(t, b.Transmitter.Sent() >= 1)
	events := b.Events()
	require.True(t, len(events) >= 3)
	require.Equal(t, []msgs.EventKind{msgs.EventSent, msgs.EventSignal, msgs.EventOpened}, kinds(events[:3]))
	require.Equal(t, "key", events[0].Unit)
	require.Equal(t, "door", events[2].Unit)
	require.Equal(t, door.Payload(6), events[2].Payload)

	st, err := b.Status.Store.Get("door")
	require.NoError(t, err)
	require.True(t, st.Open)

	b.Steps(door.DefaultOpenThreshold + 5)
	require.False(t, b.Receiver.IsOpen())
	events = b.Events()
	require.Equal(t, msgs.EventClosed, events[len(events)-1].Kind)
	st, err = b.Status.Store.Get("door")
	require.NoError(t, err)
	require.False(t, st.Open)
}

func TestSerialConsole(t *testing.T) {
	b, err := NewDefault()
	require.NoError(t, err)
	require.Equal(t, door.TextBanner, string(b.ReceiveSerial()))
	require.Empty(t, b.ReceiveSerial())
	b.Steps(1)
	require.Equal(t, door.TextWaiting, string(b.ReceiveSerial()))
}

func TestSendSerial(t *testing.T) {
	b, err := NewDefault()
	require.NoError(t, err)
	require.Equal(t, "hello", string(b.SendSerial("hello")))
	require.Zero(t, b.Door.Serial.Overruns())
}

func TestRadioDirect(t *testing.T) {
	b, err := NewDefault()
	require.NoError(t, err)
	require.NoError(t, b.Door.Radio.SetMode(radio.ModeReceive))
	require.NoError(t, b.Key.Radio.SetMode(radio.ModeTransmit))
	require.NoError(t, b.Key.Radio.TransmitPacket([]byte{9, 8, 7, 6, 5, 4}))
	b.Sim.Clock.RunFor(b.Poll())
	require.True(t, b.Door.Radio.HasData())
	buf, err := b.Door.Radio.ReceivePacketWithin(b.Door.Config.Door.DataReadyTimeout)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8, 7, 6, 5, 4}, buf)
}

func TestTraceAndLines(t *testing.T) {
	b, err := NewDefault()
	require.NoError(t, err)
	b.Steps(1)
	cs := b.Door.LineName(b.Door.Config.Pins.Radio.CS)
	require.Contains(t, b.Lines(), cs)
	all := b.Trace(cs, 0)
	require.NotEmpty(t, all)
	last := b.Trace(cs, 2)
	require.Len(t, last, 2)
	require.Equal(t, all[len(all)-2:], last)
}

func TestHoldWithoutButton(t *testing.T) {
	doorConf, keyConf := DefaultConfigs()
	keyConf.Pins.Button = ""
	b, err := New(doorConf, keyConf)
	require.NoError(t, err)
	require.Error(t, b.Hold(true))
	// without a button the handheld sends continuously
	b.Steps(3)
	require.True(t, b.Transmitter.Sent() >= 1)
}
