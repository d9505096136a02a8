package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/bench"
)

func TestStepAndTrace(t *testing.T) {
	b, err := bench.NewDefault()
	require.NoError(t, err)

	res, err := Step(b, []string{"50ms"})
	require.NoError(t, err)
	require.Contains(t, res.(string), "5 steps")
	res, err = Step(b, nil)
	require.NoError(t, err)
	require.Contains(t, res.(string), "1 steps")
	_, err = Step(b, []string{"soon"})
	require.Error(t, err)

	res, err = TraceFunc(b, nil)
	require.NoError(t, err)
	lines := res.(Lines)
	require.Contains(t, lines, "door.CE")

	res, err = TraceFunc(b, []string{"door.CE", "1"})
	require.NoError(t, err)
	require.Len(t, res.(Trace), 1)
	require.Contains(t, res.(Trace).String(), "door.CE=H")

	res, err = TraceFunc(b, []string{"nowhere"})
	require.NoError(t, err)
	require.Equal(t, "no transitions", res.(Trace).String())
}
