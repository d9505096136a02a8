package periph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/gpio"

	"github.com/robotalks/rfdoor/pkg/hal"
)

func TestMappings(t *testing.T) {
	require.Equal(t, gpio.High, toLevel(hal.High))
	require.Equal(t, gpio.Low, toLevel(hal.Low))
	require.Equal(t, gpio.PullUp, toPull(hal.PullUp))
	require.Equal(t, gpio.PullDown, toPull(hal.PullDown))
	require.Equal(t, gpio.Float, toPull(hal.Float))
	require.Equal(t, gpio.FallingEdge, toEdge(hal.FallingEdge))
	require.Equal(t, gpio.RisingEdge, toEdge(hal.RisingEdge))
	require.Equal(t, gpio.BothEdges, toEdge(hal.BothEdges))
	require.Equal(t, gpio.NoEdge, toEdge(hal.NoEdge))
}
