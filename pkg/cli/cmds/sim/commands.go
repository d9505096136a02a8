package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/cli/sh"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
)

// Trace is the result of TraceFunc.
type Trace []sim.Transition

func (t Trace) String() string {
	if len(t) == 0 {
		return "no transitions"
	}
	return sim.Dump(t)
}

// Lines lists recorded lines.
type Lines []string

func (l Lines) String() string {
	return strings.Join(l, "\n")
}

// TraceFunc shows the last N transitions of LINE, 20 by default.
// Without LINE it lists the lines.
func TraceFunc(b *bench.Bench, args []string) (interface{}, error) {
	if len(args) == 0 {
		return Lines(b.Lines()), nil
	}
	n := 20
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("invalid N %q", args[1])
		}
		n = v
	}
	return Trace(b.Trace(args[0], n)), nil
}

// Step runs the bench loop for DURATION, one poll by default.
func Step(b *bench.Bench, args []string) (interface{}, error) {
	d := b.Poll()
	if len(args) > 0 {
		v, err := time.ParseDuration(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid DURATION: %v", err)
		}
		d = v
	}
	n := b.Step(d)
	return fmt.Sprintf("%d steps, now %s", n, b.Elapsed()), nil
}

var (
	// TraceCmd exposes TraceFunc.
	TraceCmd = ishell.Cmd{
		Name:    "trace",
		Aliases: []string{"t"},
		Help:    "[LINE [N]]",
		Func:    sh.BenchCmd(TraceFunc),
	}

	// StepCmd exposes Step.
	StepCmd = ishell.Cmd{
		Name:    "step",
		Aliases: []string{"s"},
		Help:    "[DURATION]",
		Func:    sh.BenchCmd(Step),
	}
)

func init() {
	sh.AddCmds(&TraceCmd, &StepCmd)
}
