package door

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/msgs"
	"github.com/robotalks/rfdoor/pkg/radio"
	"github.com/robotalks/rfdoor/pkg/radio/rfsim"
)

func newSimRadio(t *testing.T, board *sim.Board, air *rfsim.Air, role radio.Mode) *radio.Driver {
	air.Attach(board.Name(), board, radio.DefaultLineNames)
	d, err := radio.NewOnBoard(board, radio.DefaultLineNames)
	require.NoError(t, err)
	require.NoError(t, d.InitializeLines())
	require.NoError(t, d.Configure(radio.DefaultParams().WithRole(role).Word()))
	return d
}

func TestDoorOverSimulatedAir(t *testing.T) {
	bench := sim.NewBench()
	air := rfsim.NewAir()
	doorBoard, keyBoard := bench.NewBoard("door"), bench.NewBoard("key")

	relay, err := doorBoard.Pin("RELAY")
	require.NoError(t, err)
	recv := NewReceiver("door", newSimRadio(t, doorBoard, air, radio.ModeReceive), NewActuator(relay))
	recv.DataReadyTimeout = time.Millisecond
	require.NoError(t, recv.Init())

	btn := newButton(t, keyBoard)
	tx := NewTransmitter("key", newSimRadio(t, keyBoard, air, radio.ModeTransmit), btn)
	require.NoError(t, tx.Init())

	epoch := time.Unix(0, 0)
	loop := fx.NewLoop()
	loop.Now = func() time.Time { return epoch.Add(bench.Clock.Now()) }
	loop.Add(recv, tx)
	var events []*msgs.DoorEvent
	loop.AddController(fx.StageReport, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().Each(func(m fx.Message) bool {
			if ev, ok := m.(*msgs.DoorEvent); ok {
				events = append(events, ev)
				return true
			}
			return false
		})
		return nil
	}))

	step := func(n int) {
		for ; n > 0; n-- {
			loop.Step(context.Background())
			bench.Clock.RunFor(time.Millisecond)
		}
	}
	step(5)
	require.Empty(t, events)
	require.False(t, recv.IsOpen())

	keyBoard.SimPin("BTN").Line().Drive(t, hal.Low)
	step(6)
	keyBoard.SimPin("BTN").Line().Release(t)
	step(3)
	require.True(t, recv.IsOpen())
	require.Equal(t, hal.High, relay.Read())
	require.Equal(t, 1, tx.Sent())

	var kinds []msgs.EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []msgs.EventKind{msgs.EventSent, msgs.EventSignal, msgs.EventOpened}, kinds)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, events[2].Payload)

	step(DefaultOpenThreshold + 2)
	require.False(t, recv.IsOpen())
	require.Equal(t, msgs.EventClosed, events[len(events)-1].Kind)
}
