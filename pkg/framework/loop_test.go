package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type note string

func (n note) String() string { return string(n) }

func TestStepOrder(t *testing.T) {
	var order []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			order = append(order, name)
			return nil
		})
	}
	l := NewLoop()
	l.AddController(StageReport, record("report"))
	l.AddController(StageSense, record("sense1"), record("sense2"))
	l.AddController(StageControl, ControlFunc(func(cc ControlContext) error {
		cc.Defer(StageControl, record("deferred"))
		return nil
	}), record("control"))
	l.Step(context.Background())
	require.Equal(t, []string{"sense1", "sense2", "control", "deferred", "report"}, order)
	require.EqualValues(t, 1, l.Iterations())
}

func TestMessages(t *testing.T) {
	l := NewLoop()
	var seen [][]string
	l.AddController(StageSense, ControlFunc(func(cc ControlContext) error {
		var got []string
		cc.Messages().Each(func(m Message) bool {
			got = append(got, m.String())
			return m.String() == "a"
		})
		seen = append(seen, got)
		cc.Post(note("from-sense"))
		return nil
	}))
	var late []string
	l.AddController(StageReport, ControlFunc(func(cc ControlContext) error {
		late = nil
		cc.Messages().Each(func(m Message) bool {
			late = append(late, m.String())
			return true
		})
		require.Zero(t, cc.Messages().Len())
		return nil
	}))

	l.Post(note("a"))
	l.Post(note("b"))
	l.Step(context.Background())
	require.Equal(t, []string{"a", "b"}, seen[0])
	require.Equal(t, []string{"b"}, late)

	l.Step(context.Background())
	require.Equal(t, []string{"from-sense"}, seen[1])
}

func TestControllerErrors(t *testing.T) {
	l := NewLoop()
	var errs []error
	l.OnError = func(err error) { errs = append(errs, err) }
	boom := errors.New("boom")
	l.AddController(StageControl, ControlFunc(func(ControlContext) error { return boom }))
	l.Step(context.Background())
	l.Step(context.Background())
	require.Equal(t, []error{boom, boom}, errs)
}

func TestStepTime(t *testing.T) {
	at := time.Unix(1000, 0)
	l := NewLoop()
	l.Now = func() time.Time { return at }
	var got time.Time
	l.AddController(StageSense, ControlFunc(func(cc ControlContext) error {
		got = cc.Time()
		require.NotNil(t, LoopControlFrom(cc.Context()))
		return nil
	}))
	l.Step(context.Background())
	require.Equal(t, at, got)
}

func TestRunStopsOnCancel(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Millisecond
	ticks := make(chan struct{}, 100)
	l.AddController(StageControl, ControlFunc(func(ControlContext) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	}))
	started := make(chan struct{})
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		require.NotNil(t, LoopControlFrom(ctx))
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	<-started
	<-ticks
	cancel()
	require.Equal(t, context.Canceled, <-done)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	a, b := errors.New("a"), errors.New("b")
	errs.Add(a)
	require.Equal(t, "a", errs.Aggregate().Error())
	errs.Add(b)
	require.Equal(t, "multiple errors:\n  a\n  b", errs.Error())
	require.True(t, errors.Is(errs.Aggregate(), b))
}

func TestRunnerWait(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner().Go(
		RunFunc(func(context.Context) error { return context.Canceled }),
		NamedRun("boom", RunFunc(func(context.Context) error { return boom })),
	)
	agg, ok := r.Wait().(*AggregatedError)
	require.True(t, ok)
	require.Equal(t, []error{boom}, agg.Errors)
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	cancel()
	err := RunWithContextCancel(ctx, func() { close(stop) }, func() error {
		<-stop
		return nil
	})
	require.Equal(t, context.Canceled, err)
}
