package door

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/cli/sh"
	"github.com/robotalks/rfdoor/pkg/door"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// Status is the result of door commands.
type Status struct {
	Open     bool               `json:"open"`
	Stats    door.ReceiverStats `json:"stats"`
	Sent     int                `json:"sent"`
	Units    []*msgs.UnitStatus `json:"units"`
	Elapsed  string             `json:"elapsed"`
	Pressing bool               `json:"pressing"`
}

func (s *Status) String() string {
	var w strings.Builder
	state := "closed"
	if s.Open {
		state = "open"
	}
	fmt.Fprintf(&w, "door %s at %s: signals=%d opened=%d closed=%d rejected=%d faults=%d, key sent=%d",
		state, s.Elapsed, s.Stats.Signals, s.Stats.Opened, s.Stats.Closed, s.Stats.Rejected, s.Stats.Faults, s.Sent)
	for _, u := range s.Units {
		fmt.Fprintf(&w, "\n  %s", u.String())
	}
	return w.String()
}

// Events is the result of EventsFunc.
type Events []*msgs.DoorEvent

func (e Events) String() string {
	lines := make([]string, len(e))
	for n, ev := range e {
		lines[n] = fmt.Sprintf("%s %s %s count=%d", ev.Time().UTC().Format("15:04:05.000000"), ev.Unit, ev.Kind, ev.Count)
		if len(ev.Payload) > 0 {
			lines[n] += fmt.Sprintf(" payload=% x", ev.Payload)
		}
		if ev.Detail != "" {
			lines[n] += " " + ev.Detail
		}
	}
	return strings.Join(lines, "\n")
}

// StatusOf collects the status of the bench.
func StatusOf(b *bench.Bench) (*Status, error) {
	units, err := b.Status.Store.All()
	if err != nil {
		return nil, err
	}
	return &Status{
		Open:     b.Receiver.IsOpen(),
		Stats:    b.Receiver.Stats(),
		Sent:     b.Transmitter.Sent(),
		Units:    units,
		Elapsed:  b.Elapsed().String(),
		Pressing: b.Key.Button != nil && b.Key.Button.Pressed(),
	}, nil
}

// Press holds the handheld button for N polls, 6 by default.
func Press(b *bench.Bench, args []string) (interface{}, error) {
	polls := 6
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid N %q", args[0])
		}
		polls = n
	}
	if err := b.Press(polls); err != nil {
		return nil, err
	}
	return StatusOf(b)
}

// StatusFunc shows the door status.
func StatusFunc(b *bench.Bench, args []string) (interface{}, error) {
	return StatusOf(b)
}

// EventsFunc shows the last N events, all without N.
func EventsFunc(b *bench.Bench, args []string) (interface{}, error) {
	events := b.Events()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid N %q", args[0])
		}
		if n < len(events) {
			events = events[len(events)-n:]
		}
	}
	return Events(events), nil
}

var (
	// PressCmd exposes Press.
	PressCmd = ishell.Cmd{
		Name:    "door.press",
		Aliases: []string{"press", "p"},
		Help:    "[N] polls to hold the button",
		Func:    sh.BenchCmd(Press),
	}

	// StatusCmd exposes StatusFunc.
	StatusCmd = ishell.Cmd{
		Name:    "door.status",
		Aliases: []string{"status", "st"},
		Help:    "",
		Func:    sh.BenchCmd(StatusFunc),
	}

	// EventsCmd exposes EventsFunc.
	EventsCmd = ishell.Cmd{
		Name:    "door.events",
		Aliases: []string{"events", "ev"},
		Help:    "[N]",
		Func:    sh.BenchCmd(EventsFunc),
	}
)

func init() {
	sh.AddCmds(&PressCmd, &StatusCmd, &EventsCmd)
}
