package radio

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/cli/sh"
	"github.com/robotalks/rfdoor/pkg/door"
	"github.com/robotalks/rfdoor/pkg/radio"
)

// FrontEndConfig is what a simulated front-end latched.
type FrontEndConfig struct {
	Unit       string `json:"unit"`
	Configured bool   `json:"configured"`
	Word       string `json:"word"`
	Role       string `json:"role"`
	Channel    int    `json:"channel"`
	Payload    int    `json:"payload_width"`
	Address    string `json:"address"`
	CRCBits    int    `json:"crc_bits"`
}

func (c FrontEndConfig) String() string {
	if !c.Configured {
		return c.Unit + ": not configured"
	}
	return fmt.Sprintf("%s: %s role=%s ch=%d width=%d addr=%s crc=%d",
		c.Unit, c.Word, c.Role, c.Channel, c.Payload, c.Address, c.CRCBits)
}

// Configs is the result of Config.
type Configs []FrontEndConfig

func (c Configs) String() string {
	var s string
	for n, item := range c {
		if n > 0 {
			s += "\n"
		}
		s += item.String()
	}
	return s
}

// Packet is the result of TX and RX.
type Packet struct {
	Unit    string `json:"unit"`
	Payload []byte `json:"payload"`
	Valid   bool   `json:"valid"`
}

func (p *Packet) String() string {
	if p.Payload == nil {
		return p.Unit + ": no data"
	}
	return fmt.Sprintf("%s: % x valid=%v", p.Unit, p.Payload, p.Valid)
}

func valid(buf []byte) bool {
	return len(buf) > 0 && door.ValidPayload(buf)
}

func frontEndConfig(u *bench.Unit) FrontEndConfig {
	p := u.FrontEnd.Params()
	return FrontEndConfig{
		Unit:       u.Board.Name(),
		Configured: u.FrontEnd.Configured(),
		Word:       p.Word().String(),
		Role:       p.Role.String(),
		Channel:    p.Channel,
		Payload:    p.PayloadWidth,
		Address:    fmt.Sprintf("%x", p.NodeAddress()),
		CRCBits:    p.CRCBits(),
	}
}

// Config shows the configuration latched by both front-ends.
func Config(b *bench.Bench, args []string) (interface{}, error) {
	return Configs{frontEndConfig(b.Door), frontEndConfig(b.Key)}, nil
}

// ParseBytes parses arguments as byte values, decimal or 0x hex.
func ParseBytes(args []string) ([]byte, error) {
	buf := make([]byte, len(args))
	for n, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %v", arg, err)
		}
		buf[n] = byte(v)
	}
	return buf, nil
}

// TX sends a payload from the handheld radio and lets it fly.
func TX(b *bench.Bench, args []string) (interface{}, error) {
	buf, err := ParseBytes(args)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		buf = door.Payload(b.Key.Radio.PayloadWidth())
	}
	if err := b.Key.Radio.SetMode(radio.ModeTransmit); err != nil {
		return nil, err
	}
	if err := b.Key.Radio.TransmitPacket(buf); err != nil {
		return nil, err
	}
	b.Sim.Clock.RunFor(2 * b.Air.Latency)
	return &Packet{Unit: b.Key.Board.Name(), Payload: buf, Valid: valid(buf)}, nil
}

// RX reads a pending packet from the door radio.
func RX(b *bench.Bench, args []string) (interface{}, error) {
	res := &Packet{Unit: b.Door.Board.Name()}
	if b.Door.Radio.Mode() != radio.ModeReceive {
		if err := b.Door.Radio.SetMode(radio.ModeReceive); err != nil {
			return nil, err
		}
	}
	if !b.Door.Radio.HasData() {
		return res, nil
	}
	buf, err := b.Door.Radio.ReceivePacketWithin(b.Door.Config.Door.DataReadyTimeout)
	if err != nil {
		return nil, err
	}
	res.Payload, res.Valid = buf, valid(buf)
	return res, nil
}

var (
	// ConfigCmd exposes Config.
	ConfigCmd = ishell.Cmd{
		Name:    "radio.config",
		Aliases: []string{"rc"},
		Help:    "",
		Func:    sh.BenchCmd(Config),
	}

	// TXCmd exposes TX.
	TXCmd = ishell.Cmd{
		Name:    "radio.tx",
		Aliases: []string{"rt"},
		Help:    "[BYTE...], the key payload without bytes",
		Func:    sh.BenchCmd(TX),
	}

	// RXCmd exposes RX.
	RXCmd = ishell.Cmd{
		Name:    "radio.rx",
		Aliases: []string{"rr"},
		Help:    "",
		Func:    sh.BenchCmd(RX),
	}
)

func init() {
	sh.AddCmds(&ConfigCmd, &TXCmd, &RXCmd)
}
