package hal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEdgeMatches(t *testing.T) {
	testCases := []struct {
		edge     Edge
		from, to Level
		expect   bool
	}{
		{RisingEdge, Low, High, true},
		{RisingEdge, High, Low, false},
		{FallingEdge, High, Low, true},
		{FallingEdge, Low, High, false},
		{BothEdges, Low, High, true},
		{BothEdges, High, Low, true},
		{BothEdges, High, High, false},
		{NoEdge, Low, High, false},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.expect, tc.edge.Matches(tc.from, tc.to), "%d %v->%v", tc.edge, tc.from, tc.to)
	}
}

type stepClock struct {
	now time.Duration
}

func (c *stepClock) Now() time.Duration    { return c.now }
func (c *stepClock) Delay(d time.Duration) { c.now += d }
func (c *stepClock) Yield()                { c.now += time.Microsecond }

func TestWaitUntil(t *testing.T) {
	c := &stepClock{}
	require.True(t, WaitUntil(c, func() bool { return c.now >= 10*time.Microsecond }, 0))
	require.Equal(t, 10*time.Microsecond, c.now)

	require.False(t, WaitUntil(c, func() bool { return false }, 5*time.Microsecond))
	require.Equal(t, 15*time.Microsecond, c.now)
}

func TestPinError(t *testing.T) {
	err := &PinError{Pin: "GPIO17", Op: "out", Err: ErrNoSuchPin}
	require.Equal(t, "pin GPIO17: out: no such pin", err.Error())
	require.True(t, errors.Is(err, ErrNoSuchPin))
}
