package hal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSuchPin indicates the board doesn't know the pin name.
	ErrNoSuchPin = errors.New("no such pin")
	// ErrNotEdgeCapable indicates the pin can't raise edge interrupts.
	ErrNotEdgeCapable = errors.New("pin is not edge capable")
)

// PinError wraps a failure of a pin operation.
type PinError struct {
	Pin string
	Op  string
	Err error
}

// Error implements error.
func (e *PinError) Error() string {
	return fmt.Sprintf("pin %s: %s: %v", e.Pin, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PinError) Unwrap() error {
	return e.Err
}
