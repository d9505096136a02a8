package door

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/radio"
)

func TestEchoTest(t *testing.T) {
	port := &fakePort{inbox: []byte{'A', 'z'}}
	e := NewEchoTest(port, nil, nil)
	require.NoError(t, e.Init())
	require.Equal(t, 1, port.armed)
	require.NoError(t, e.Poll())
	require.Equal(t, "A: 65\r\n", port.take())
	require.NoError(t, e.Poll())
	require.Equal(t, "z: 122\r\n", port.take())
	require.NoError(t, e.Poll())
	require.Empty(t, port.take())
}

func TestEchoTestCounter(t *testing.T) {
	board := sim.NewBench().NewBoard("u")
	btn := newButton(t, board)
	btn.Debounce = 1
	ledPin, err := board.Pin("LED")
	require.NoError(t, err)
	port := &fakePort{}
	e := NewEchoTest(port, btn, NewActuator(ledPin))
	require.NoError(t, e.Init())

	board.SimPin("BTN").Line().Drive(t, hal.Low)
	for n := 0; n < 11; n++ {
		require.NoError(t, e.Poll())
	}
	require.Equal(t, "12345678901", port.take())
	require.Equal(t, hal.High, ledPin.Read())
}

func TestRFTest(t *testing.T) {
	r := newFakeRadio()
	c := &textConsole{}
	rt := NewRFTest(r, c)
	require.NoError(t, rt.Poll())
	require.NoError(t, rt.Poll())
	require.Equal(t, "Waiting", c.take())
	r.inbox = [][]byte{{6, 5, 4, 3, 2, 1}, {9, 9, 9, 9, 9, 200}}
	require.NoError(t, rt.Poll())
	require.NoError(t, rt.Poll())
	require.Equal(t, "Data654321WaitingData99999200", c.take())
	require.Equal(t, 2, rt.Packets())
	require.Equal(t, []radio.Mode{radio.ModeReceive}, r.modes)
}
