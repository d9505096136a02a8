package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/robotalks/rfdoor/pkg/hal"
)

// Transition is a recorded level change of a line.
type Transition struct {
	At    time.Duration
	Line  string
	Level hal.Level
}

// String implements fmt.Stringer.
func (t Transition) String() string {
	lvl := "L"
	if t.Level {
		lvl = "H"
	}
	return fmt.Sprintf("%v %s=%s", t.At, t.Line, lvl)
}

// Recorder keeps the transition history of lines.
type Recorder struct {
	transitions []Transition
}

// Record appends a transition.
func (r *Recorder) Record(at time.Duration, line string, level hal.Level) {
	r.transitions = append(r.transitions, Transition{At: at, Line: line, Level: level})
}

// All returns every recorded transition in order.
func (r *Recorder) All() []Transition {
	return r.transitions
}

// Reset forgets the history.
func (r *Recorder) Reset() {
	r.transitions = nil
}

// Filter returns transitions of the given lines in order.
func (r *Recorder) Filter(lines ...string) []Transition {
	var res []Transition
	for _, t := range r.transitions {
		for _, name := range lines {
			if t.Line == name {
				res = append(res, t)
				break
			}
		}
	}
	return res
}

// Transitions returns transitions of a single line.
func (r *Recorder) Transitions(line string) []Transition {
	return r.Filter(line)
}

// LevelAt returns the level of line at time at. The boolean is false if
// the line had no recorded level by then.
func (r *Recorder) LevelAt(line string, at time.Duration) (hal.Level, bool) {
	var (
		lvl   hal.Level
		found bool
	)
	for _, t := range r.transitions {
		if t.At > at {
			break
		}
		if t.Line == line {
			lvl, found = t.Level, true
		}
	}
	return lvl, found
}

// Dump formats transitions one per line.
func Dump(transitions []Transition) string {
	items := make([]string, len(transitions))
	for n, t := range transitions {
		items[n] = t.String()
	}
	return strings.Join(items, "\n")
}
