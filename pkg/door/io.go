package door

import (
	"github.com/robotalks/rfdoor/pkg/hal"
)

// Actuator drives a relay or LED.
type Actuator struct {
	// ActiveLow inverts the output.
	ActiveLow bool

	pin hal.Pin
	on  bool
}

// NewActuator creates an active high Actuator.
func NewActuator(pin hal.Pin) *Actuator {
	return &Actuator{pin: pin}
}

// Init drives the output inactive.
func (a *Actuator) Init() error {
	return a.Set(false)
}

// Set switches the output.
func (a *Actuator) Set(on bool) error {
	if err := a.pin.Out(hal.Level(on != a.ActiveLow)); err != nil {
		return err
	}
	a.on = on
	return nil
}

// IsOn returns the state last set.
func (a *Actuator) IsOn() bool {
	return a.on
}

// Button debounces a push button.
type Button struct {
	// ActiveLow buttons pull the pin to ground when pressed.
	ActiveLow bool
	// Debounce is the number of equal samples before a change is taken.
	Debounce int

	pin       hal.Pin
	pressed   bool
	candidate bool
	stable    int
}

// DefaultDebounce is in polls.
const DefaultDebounce = 3

// NewButton creates an active low Button.
func NewButton(pin hal.Pin) *Button {
	return &Button{ActiveLow: true, Debounce: DefaultDebounce, pin: pin}
}

// Init makes the pin an input biased to the released level.
func (b *Button) Init() error {
	if b.ActiveLow {
		return b.pin.In(hal.PullUp)
	}
	return b.pin.In(hal.PullDown)
}

// Poll samples the pin and returns the debounced state.
func (b *Button) Poll() bool {
	raw := b.pin.Read() == hal.Level(!b.ActiveLow)
	if raw != b.candidate {
		b.candidate, b.stable = raw, 0
	}
	b.stable++
	if b.stable >= b.Debounce {
		b.pressed = b.candidate
	}
	return b.pressed
}

// Pressed returns the debounced state of the last Poll.
func (b *Button) Pressed() bool {
	return b.pressed
}
