package door

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

func TestPressAndStatus(t *testing.T) {
	b, err := bench.NewDefault()
	require.NoError(t, err)

	res, err := StatusFunc(b, nil)
	require.NoError(t, err)
	st := res.(*Status)
	require.False(t, st.Open)
	require.Empty(t, st.Units)

	res, err = Press(b, nil)
	require.NoError(t, err)
	st = res.(*Status)
	require.True(t, st.Open)
	require.True(t, st.Sent >= 1)
	require.True(t, st.Stats.Opened >= 1)
	require.Len(t, st.Units, 2)
	require.Contains(t, st.String(), "door open")

	res, err = EventsFunc(b, []string{"1"})
	require.NoError(t, err)
	require.Len(t, res.(Events), 1)
	res, err = EventsFunc(b, nil)
	require.NoError(t, err)
	events := res.(Events)
	require.Equal(t, msgs.EventSent, events[0].Kind)
	require.Contains(t, events.String(), "key sent count=1 payload=06 05 04 03 02 01")

	_, err = Press(b, []string{"zero"})
	require.Error(t, err)
	_, err = EventsFunc(b, []string{"-1"})
	require.Error(t, err)
}
