package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/hal"
)

func TestClockOrdersEvents(t *testing.T) {
	c := NewClock()
	var order []int
	c.After(3*time.Microsecond, func() { order = append(order, 3) })
	c.After(1*time.Microsecond, func() { order = append(order, 1) })
	c.After(3*time.Microsecond, func() { order = append(order, 4) })
	c.After(2*time.Microsecond, func() { order = append(order, 2) })
	c.Delay(10 * time.Microsecond)
	require.Equal(t, []int{1, 2, 3, 4}, order)
	require.Equal(t, 10*time.Microsecond, c.Now())
	require.Zero(t, c.Pending())
}

func TestClockYield(t *testing.T) {
	c := NewClock()
	fired := false
	c.After(100*time.Microsecond, func() { fired = true })
	c.Yield()
	require.False(t, fired)
	require.Equal(t, time.Microsecond, c.Now())
	require.NoError(t, c.RunUntil(func() bool { return fired }, time.Millisecond))
	require.Equal(t, 100*time.Microsecond, c.Now())
	require.Equal(t, ErrStalled, c.RunUntil(func() bool { return false }, 10*time.Microsecond))
}

func TestTimerPeriodic(t *testing.T) {
	c := NewClock()
	tm := c.NewTimer()
	var at []time.Duration
	tm.Start(5*time.Microsecond, 10*time.Microsecond, func() {
		at = append(at, c.Now())
		if len(at) == 3 {
			tm.Stop()
		}
	})
	c.Delay(100 * time.Microsecond)
	require.Equal(t, []time.Duration{5 * time.Microsecond, 15 * time.Microsecond, 25 * time.Microsecond}, at)
	require.False(t, tm.Running())
	require.Equal(t, 3, tm.Fires())
}

func TestTimerRestart(t *testing.T) {
	c := NewClock()
	tm := c.NewTimer()
	count := 0
	tm.Start(time.Microsecond, time.Microsecond, func() { count++ })
	tm.Start(50*time.Microsecond, 0, func() { count += 10 })
	c.Delay(100 * time.Microsecond)
	require.Equal(t, 10, count)
}

func TestLineDriversAndEdges(t *testing.T) {
	bench := NewBench()
	a, b := bench.NewBoard("a"), bench.NewBoard("b")
	line := Wire("link", a, "tx", b, "rx")
	tx, rx := a.SimPin("tx"), b.SimPin("rx")

	var falls, rises int
	require.NoError(t, rx.Watch(hal.FallingEdge, func() { falls++ }))
	cancel := line.OnEdge(hal.RisingEdge, func() { rises++ })

	require.Equal(t, hal.High, rx.Read())
	require.NoError(t, tx.Out(hal.Low))
	require.Equal(t, hal.Low, rx.Read())
	require.NoError(t, tx.Out(hal.High))
	require.NoError(t, tx.Out(hal.High))
	require.Equal(t, 1, falls)
	require.Equal(t, 1, rises)

	require.NoError(t, rx.Unwatch())
	require.False(t, rx.Watching())
	cancel()
	require.NoError(t, tx.Out(hal.Low))
	require.Equal(t, 1, falls)
	require.Equal(t, 1, rises)

	require.NoError(t, tx.In(hal.Float))
	require.Equal(t, hal.High, rx.Read())
	require.Zero(t, line.Contentions())

	require.NoError(t, tx.Out(hal.Low))
	require.NoError(t, rx.Out(hal.High))
	require.Equal(t, 1, line.Contentions())
}

func TestRecorder(t *testing.T) {
	bench := NewBench()
	board := bench.NewBoard("u")
	p := board.SimPin("clk")
	bench.Clock.Delay(time.Microsecond)
	require.NoError(t, p.Out(hal.Low))
	bench.Clock.Delay(time.Microsecond)
	require.NoError(t, p.Out(hal.High))

	trans := bench.Recorder.Transitions("u.clk")
	require.Len(t, trans, 3)
	require.Equal(t, Transition{At: 0, Line: "u.clk", Level: hal.High}, trans[0])
	require.Equal(t, Transition{At: time.Microsecond, Line: "u.clk", Level: hal.Low}, trans[1])

	lvl, ok := bench.Recorder.LevelAt("u.clk", 1500*time.Nanosecond)
	require.True(t, ok)
	require.Equal(t, hal.Low, lvl)
	_, ok = bench.Recorder.LevelAt("u.none", time.Second)
	require.False(t, ok)
	require.Contains(t, Dump(trans), "u.clk=L")
}
