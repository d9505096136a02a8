package config

import (
	"encoding/hex"
	"fmt"

	"github.com/robotalks/rfdoor/pkg/radio"
)

var (
	powerCodes = map[string]radio.Power{
		"-20dBm": radio.PowerMinus20dBm,
		"-10dBm": radio.PowerMinus10dBm,
		"-5dBm":  radio.PowerMinus5dBm,
		"0dBm":   radio.Power0dBm,
	}
	rateCodes = map[string]radio.DataRate{
		"250k": radio.Rate250K,
		"1M":   radio.Rate1M,
	}
	crystalCodes = map[int]radio.Crystal{
		4:  radio.Crystal4MHz,
		8:  radio.Crystal8MHz,
		12: radio.Crystal12MHz,
		16: radio.Crystal16MHz,
		20: radio.Crystal20MHz,
	}
)

// Validate checks the config. It does not change it.
func (c *Config) Validate() error {
	switch c.Unit.Role {
	case RoleReceiver, RoleTransmitter:
	default:
		return fmt.Errorf("unit.role: %q is neither %s nor %s", c.Unit.Role, RoleReceiver, RoleTransmitter)
	}
	if err := c.Pins.validate(c.Unit.Role); err != nil {
		return err
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud: %d is negative", c.Serial.Baud)
	}
	if c.Serial.Baud == 0 {
		if c.Serial.BitPeriod <= 0 {
			return fmt.Errorf("serial.bit_period: %v must be positive", c.Serial.BitPeriod)
		}
		if c.Serial.HalfBit <= 0 || c.Serial.HalfBit >= c.Serial.BitPeriod {
			return fmt.Errorf("serial.half_bit: %v not within bit period %v", c.Serial.HalfBit, c.Serial.BitPeriod)
		}
	}
	if _, err := c.RadioParams(); err != nil {
		return err
	}
	if c.Door.OpenThreshold < 1 {
		return fmt.Errorf("door.open_threshold: %d must be at least 1", c.Door.OpenThreshold)
	}
	if c.Door.PollInterval <= 0 {
		return fmt.Errorf("door.poll_interval: %v must be positive", c.Door.PollInterval)
	}
	if c.Door.DataReadyTimeout < 0 {
		return fmt.Errorf("door.data_ready_timeout: %v is negative", c.Door.DataReadyTimeout)
	}
	if c.Door.SendInterval < 0 {
		return fmt.Errorf("door.send_interval: %v is negative", c.Door.SendInterval)
	}
	if c.Door.Debounce < 1 {
		return fmt.Errorf("door.debounce: %d must be at least 1", c.Door.Debounce)
	}
	return nil
}

func (p *PinsConfig) validate(role string) error {
	seen := make(map[string]string)
	use := func(field, pin string, required bool) error {
		if pin == "" {
			if required {
				return fmt.Errorf("pins.%s: required", field)
			}
			return nil
		}
		if prev, ok := seen[pin]; ok {
			return fmt.Errorf("pins.%s: %s already used by pins.%s", field, pin, prev)
		}
		seen[pin] = field
		return nil
	}
	checks := []struct {
		field    string
		pin      string
		required bool
	}{
		{"serial_tx", p.SerialTX, false},
		{"serial_rx", p.SerialRX, false},
		{"radio.ce", p.Radio.CE, true},
		{"radio.cs", p.Radio.CS, true},
		{"radio.clk", p.Radio.CLK, true},
		{"radio.data", p.Radio.DATA, true},
		{"radio.dr", p.Radio.DR, true},
		{"actuator", p.Actuator, role == RoleReceiver},
		{"button", p.Button, false},
	}
	for _, c := range checks {
		if err := use(c.field, c.pin, c.required); err != nil {
			return err
		}
	}
	if (p.SerialTX == "") != (p.SerialRX == "") {
		return fmt.Errorf("pins.serial_tx, pins.serial_rx: both or neither must be set")
	}
	return nil
}

// RadioParams converts the radio section for the unit's role.
func (c *Config) RadioParams() (radio.Params, error) {
	p := radio.DefaultParams().WithRole(c.Role())
	r := &c.Radio
	p.PayloadWidth = r.PayloadWidth
	p.Channel = r.Channel

	power, ok := powerCodes[r.Power]
	if !ok {
		return p, fmt.Errorf("radio.power: unknown %q", r.Power)
	}
	p.Power = power
	rate, ok := rateCodes[r.DataRate]
	if !ok {
		return p, fmt.Errorf("radio.data_rate: unknown %q", r.DataRate)
	}
	p.DataRate = rate
	xo, ok := crystalCodes[r.CrystalMHz]
	if !ok {
		return p, fmt.Errorf("radio.crystal_mhz: unsupported %d", r.CrystalMHz)
	}
	p.Crystal = xo
	switch r.CRCBits {
	case 0:
		p.CRCEnable = false
	case 8:
		p.CRCEnable, p.CRC16 = true, false
	case 16:
		p.CRCEnable, p.CRC16 = true, true
	default:
		return p, fmt.Errorf("radio.crc_bits: %d is not 0, 8 or 16", r.CRCBits)
	}

	addr, err := hex.DecodeString(r.Address)
	if err != nil {
		return p, fmt.Errorf("radio.address: %w", err)
	}
	if len(addr) < 1 || len(addr) > radio.AddrBytes {
		return p, fmt.Errorf("radio.address: %d bytes not in 1..%d", len(addr), radio.AddrBytes)
	}
	var full [radio.AddrBytes]byte
	copy(full[radio.AddrBytes-len(addr):], addr)
	p.Channel1Addr, p.Channel2Addr = full, full
	p.AddrWidth = len(addr)

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("radio: %w", err)
	}
	return p, nil
}
