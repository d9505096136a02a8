package framework

import (
	"context"
	"time"
)

// Named is implemented by things with a name.
type Named interface {
	Name() string
}

// Runnable runs in the background until the context is done.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything posted to a loop. Event messages are protobuf
// messages, so String is all the loop asks for.
type Message interface {
	String() string
}

// Controller is polled once per loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// ControlContext is what a controller sees of the current iteration.
type ControlContext interface {
	// Context is canceled when the loop stops.
	Context() context.Context
	// Time is when the iteration started.
	Time() time.Time
	// Stage is the stage being run.
	Stage() int
	// Messages are the messages queued before the iteration started,
	// less those taken by earlier stages.
	Messages() Inbox

	LoopControl
}

// LoopControl is the part of the loop a controller may poke.
type LoopControl interface {
	// Post queues a message for the next iteration.
	Post(Message)
	// Defer runs controllers once at the end of the stage.
	Defer(stage int, ctls ...Controller)
	// TriggerNext runs the next iteration without waiting for Interval.
	TriggerNext()
}

// Inbox gives access to the messages of an iteration.
type Inbox interface {
	// Each visits messages in order. Messages for which fn returns true
	// are taken and not shown to later stages.
	Each(fn func(Message) bool)
	// Len is the number of messages not taken yet.
	Len() int
}

// Stages is the number of stages in an iteration.
const Stages = 8

// Stages, run in increasing order.
const (
	// StageSense polls inputs: buttons, the radio data-ready line.
	StageSense = 1
	// StageControl makes decisions.
	StageControl = 3
	// StageActuate drives outputs: relays, LEDs.
	StageActuate = 5
	// StageReport ships events out of the process.
	StageReport = Stages - 1
)
