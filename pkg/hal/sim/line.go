package sim

import (
	"github.com/robotalks/rfdoor/pkg/hal"
)

// Line is a simulated wire. Its level is the level of the most recent
// active driver, or the pull level when nobody drives it.
type Line struct {
	name     string
	clock    *Clock
	recorder *Recorder

	pull     hal.Level
	level    hal.Level
	drivers  []driverEntry
	watchers []*watcher

	contentions int
}

type driverEntry struct {
	owner interface{}
	level hal.Level
}

type watcher struct {
	edge hal.Edge
	fn   func()
}

// NewLine creates a line pulled to the given level.
func NewLine(clock *Clock, recorder *Recorder, name string, pull hal.Level) *Line {
	l := &Line{name: name, clock: clock, recorder: recorder, pull: pull, level: pull}
	if recorder != nil {
		recorder.Record(clock.Now(), name, pull)
	}
	return l
}

// Name returns the line name.
func (l *Line) Name() string {
	return l.name
}

// Level returns the current level.
func (l *Line) Level() hal.Level {
	return l.level
}

// Contentions counts how many times two drivers were active at once.
func (l *Line) Contentions() int {
	return l.contentions
}

// Drive makes owner drive the line.
func (l *Line) Drive(owner interface{}, level hal.Level) {
	for n := range l.drivers {
		if l.drivers[n].owner == owner {
			l.drivers = append(l.drivers[:n], l.drivers[n+1:]...)
			break
		}
	}
	if len(l.drivers) > 0 {
		l.contentions++
	}
	l.drivers = append(l.drivers, driverEntry{owner: owner, level: level})
	l.update()
}

// Release stops owner driving the line.
func (l *Line) Release(owner interface{}) {
	for n := range l.drivers {
		if l.drivers[n].owner == owner {
			l.drivers = append(l.drivers[:n], l.drivers[n+1:]...)
			l.update()
			return
		}
	}
}

// SetPull changes the bias of an undriven line.
func (l *Line) SetPull(level hal.Level) {
	l.pull = level
	l.update()
}

// OnEdge registers fn for selected transitions and returns a cancel func.
func (l *Line) OnEdge(edge hal.Edge, fn func()) (cancel func()) {
	w := &watcher{edge: edge, fn: fn}
	l.watchers = append(l.watchers, w)
	return func() {
		for n, item := range l.watchers {
			if item == w {
				l.watchers = append(l.watchers[:n], l.watchers[n+1:]...)
				return
			}
		}
	}
}

func (l *Line) update() {
	level := l.pull
	if n := len(l.drivers); n > 0 {
		level = l.drivers[n-1].level
	}
	if level == l.level {
		return
	}
	from := l.level
	l.level = level
	if l.recorder != nil {
		l.recorder.Record(l.clock.Now(), l.name, level)
	}
	watchers := make([]*watcher, len(l.watchers))
	copy(watchers, l.watchers)
	for _, w := range watchers {
		if w.edge.Matches(from, level) {
			w.fn()
		}
	}
}
