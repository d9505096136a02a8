package config

import (
	"fmt"

	"github.com/robotalks/rfdoor/pkg/door"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/radio"
	"github.com/robotalks/rfdoor/pkg/serial"
)

// Hardware is what a unit drives on its board.
type Hardware struct {
	Radio *radio.Driver
	// Serial is nil without serial pins.
	Serial *serial.Engine
	// Actuator is nil without an actuator pin.
	Actuator *door.Actuator
	// Button is nil without a button pin.
	Button *door.Button

	params radio.Params
}

// Open resolves the configured pins on board. Nothing is driven until Init.
func (c *Config) Open(board hal.Board) (*Hardware, error) {
	params, err := c.RadioParams()
	if err != nil {
		return nil, err
	}
	h := &Hardware{params: params}
	if h.Radio, err = radio.NewOnBoard(board, c.Pins.Radio); err != nil {
		return nil, fmt.Errorf("radio pins: %w", err)
	}
	if c.Pins.SerialTX != "" {
		if h.Serial, err = serial.NewOnBoard(board, c.Pins.SerialTX, c.Pins.SerialRX); err != nil {
			return nil, fmt.Errorf("serial pins: %w", err)
		}
		h.Serial.WithTiming(c.SerialTiming())
	}
	if c.Pins.Actuator != "" {
		pin, err := board.Pin(c.Pins.Actuator)
		if err != nil {
			return nil, fmt.Errorf("actuator pin: %w", err)
		}
		h.Actuator = door.NewActuator(pin)
		h.Actuator.ActiveLow = c.Pins.ActuatorActiveLow
	}
	if c.Pins.Button != "" {
		pin, err := board.Pin(c.Pins.Button)
		if err != nil {
			return nil, fmt.Errorf("button pin: %w", err)
		}
		h.Button = door.NewButton(pin)
		h.Button.ActiveLow = !c.Pins.ButtonActiveHigh
		h.Button.Debounce = c.Door.Debounce
	}
	return h, nil
}

// Params returns the radio parameters the radio is configured with.
func (h *Hardware) Params() radio.Params {
	return h.params
}

// Init starts the serial engine and configures the radio.
func (h *Hardware) Init() error {
	if h.Serial != nil {
		if err := h.Serial.Init(); err != nil {
			return fmt.Errorf("serial init: %w", err)
		}
	}
	if err := h.Radio.InitializeLines(); err != nil {
		return fmt.Errorf("radio init: %w", err)
	}
	word, err := h.params.EncodeWord()
	if err != nil {
		return fmt.Errorf("radio params: %w", err)
	}
	if err := h.Radio.Configure(word); err != nil {
		return fmt.Errorf("radio configure: %w", err)
	}
	return nil
}

// Console returns the serial engine as console, or one discarding output.
func (h *Hardware) Console() door.Console {
	if h.Serial == nil {
		return door.Discard
	}
	return h.Serial
}

// NewReceiver creates the door side on h.
func (c *Config) NewReceiver(h *Hardware) (*door.Receiver, error) {
	if h.Actuator == nil {
		return nil, fmt.Errorf("pins.actuator: required by %s", RoleReceiver)
	}
	r := door.NewReceiver(c.UnitID(), h.Radio, h.Actuator).WithConsole(h.Console())
	r.OpenThreshold = c.Door.OpenThreshold
	r.DataReadyTimeout = c.Door.DataReadyTimeout
	return r, nil
}

// NewTransmitter creates the handheld side on h.
func (c *Config) NewTransmitter(h *Hardware) *door.Transmitter {
	t := door.NewTransmitter(c.UnitID(), h.Radio, h.Button)
	if h.Actuator != nil {
		t.WithLED(h.Actuator)
	}
	if c.Door.SendInterval > 0 {
		t.Interval = c.Door.SendInterval
	}
	return t
}

// Diagnostic modes.
const (
	DiagEcho = "echo"
	DiagRF   = "rf"
)

// Diagnostic is a bring-up mode run in place of the door logic.
type Diagnostic interface {
	fx.LoopAdder
	Poll() error
}

// NewDiagnostic creates the diagnostic mode on h. The echo test needs the
// serial pins.
func (c *Config) NewDiagnostic(mode string, h *Hardware) (Diagnostic, error) {
	switch mode {
	case DiagEcho:
		if h.Serial == nil {
			return nil, fmt.Errorf("pins.serial_tx: required by %s test", mode)
		}
		e := door.NewEchoTest(h.Serial, h.Button, h.Actuator)
		if err := e.Init(); err != nil {
			return nil, err
		}
		return e, nil
	case DiagRF:
		t := door.NewRFTest(h.Radio, h.Console())
		t.DataReadyTimeout = c.Door.DataReadyTimeout
		return t, nil
	}
	return nil, fmt.Errorf("unknown diagnostic %q", mode)
}
