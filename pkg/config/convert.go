package config

import (
	"github.com/robotalks/rfdoor/pkg/env"
	"github.com/robotalks/rfdoor/pkg/radio"
	"github.com/robotalks/rfdoor/pkg/serial"
)

// Role returns the radio role of the unit.
func (c *Config) Role() radio.Mode {
	if c.Unit.Role == RoleTransmitter {
		return radio.ModeTransmit
	}
	return radio.ModeReceive
}

// UnitID returns the configured ID or one derived from the machine.
func (c *Config) UnitID() string {
	if c.Unit.ID != "" {
		return c.Unit.ID
	}
	return env.UnitID(c.Unit.Role)
}

// SerialTiming converts the serial section.
func (c *Config) SerialTiming() serial.Timing {
	if c.Serial.Baud > 0 {
		return serial.TimingForBaud(c.Serial.Baud)
	}
	return serial.Timing{
		BitPeriod: c.Serial.BitPeriod,
		HalfBit:   c.Serial.HalfBit,
		Lead:      c.Serial.BitPeriod,
	}
}
