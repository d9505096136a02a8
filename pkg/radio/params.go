package radio

import (
	"encoding/hex"
	"fmt"
)

// Mode is the operating mode of the front-end.
type Mode int

// Modes.
const (
	ModeConfigure Mode = iota
	ModeTransmit
	ModeReceive
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeConfigure:
		return "configure"
	case ModeTransmit:
		return "transmit"
	case ModeReceive:
		return "receive"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// DataRate is the air data rate in ShockBurst mode.
type DataRate int

// Data rates.
const (
	Rate250K DataRate = 0
	Rate1M   DataRate = 1
)

// Crystal is the XO_F field, the frequency of the front-end crystal.
type Crystal int

// Crystals.
const (
	Crystal4MHz  Crystal = 0
	Crystal8MHz  Crystal = 1
	Crystal12MHz Crystal = 2
	Crystal16MHz Crystal = 3
	Crystal20MHz Crystal = 4
)

// Power is the RF output power.
type Power int

// Output powers.
const (
	PowerMinus20dBm Power = 0
	PowerMinus10dBm Power = 1
	PowerMinus5dBm  Power = 2
	Power0dBm       Power = 3
)

// Word layout.
const (
	ConfigWordBytes = 14
	ConfigWordBits  = ConfigWordBytes * 8
	AddrBytes       = 5
	// MaxPacketBits is the ShockBurst limit for address + payload + CRC.
	MaxPacketBits = 256
	MaxChannel    = 127
)

// Params are the fields of the configuration word.
type Params struct {
	// PayloadWidth is the payload size in bytes.
	PayloadWidth int
	Channel2Addr [AddrBytes]byte
	Channel1Addr [AddrBytes]byte
	// AddrWidth is the number of address bytes used on air, counted
	// from the end of the address fields.
	AddrWidth  int
	CRC16      bool
	CRCEnable  bool
	TwoChannel bool
	ShockBurst bool
	DataRate   DataRate
	Crystal    Crystal
	Power      Power
	// Channel selects 2400MHz + Channel * 1MHz.
	Channel int
	// Role is ModeReceive or ModeTransmit (RXEN).
	Role Mode
}

// DefaultNodeAddress is the address shared by the paired units.
var DefaultNodeAddress = [AddrBytes]byte{0x00, 0x00, 0x00, 0x42, 0x42}

// DefaultParams returns 6 byte payloads on channel 64, 2 byte address
// 0x4242, 16 bit CRC, ShockBurst at 1Mbps, 16MHz crystal, 0dBm.
func DefaultParams() Params {
	return Params{
		PayloadWidth: 6,
		Channel2Addr: DefaultNodeAddress,
		Channel1Addr: DefaultNodeAddress,
		AddrWidth:    2,
		CRC16:        true,
		CRCEnable:    true,
		ShockBurst:   true,
		DataRate:     Rate1M,
		Crystal:      Crystal16MHz,
		Power:        Power0dBm,
		Channel:      64,
		Role:         ModeTransmit,
	}
}

// WithRole returns a copy with the role set.
func (p Params) WithRole(role Mode) Params {
	p.Role = role
	return p
}

// CRCBits returns the CRC length on air.
func (p Params) CRCBits() int {
	if !p.CRCEnable {
		return 0
	}
	if p.CRC16 {
		return 16
	}
	return 8
}

// NodeAddress returns the address bytes clocked before a payload.
func (p Params) NodeAddress() []byte {
	w := p.AddrWidth
	if w < 1 || w > AddrBytes {
		w = AddrBytes
	}
	addr := make([]byte, w)
	copy(addr, p.Channel1Addr[AddrBytes-w:])
	return addr
}

// Validate checks the fields fit the word and the ShockBurst packet limit.
func (p Params) Validate() error {
	if p.AddrWidth < 1 || p.AddrWidth > AddrBytes {
		return fmt.Errorf("%w: address width %d not in 1..%d", ErrInvalidParams, p.AddrWidth, AddrBytes)
	}
	if p.PayloadWidth < 1 {
		return fmt.Errorf("%w: payload width %d", ErrInvalidParams, p.PayloadWidth)
	}
	if bits := p.PayloadWidth*8 + p.AddrWidth*8 + p.CRCBits(); bits > MaxPacketBits {
		return fmt.Errorf("%w: packet of %d bits exceeds %d", ErrInvalidParams, bits, MaxPacketBits)
	}
	if p.Channel < 0 || p.Channel > MaxChannel {
		return fmt.Errorf("%w: channel %d not in 0..%d", ErrInvalidParams, p.Channel, MaxChannel)
	}
	if p.Crystal < Crystal4MHz || p.Crystal > Crystal20MHz {
		return fmt.Errorf("%w: crystal code %d", ErrInvalidParams, p.Crystal)
	}
	if p.Power < PowerMinus20dBm || p.Power > Power0dBm {
		return fmt.Errorf("%w: power code %d", ErrInvalidParams, p.Power)
	}
	if p.Role != ModeTransmit && p.Role != ModeReceive {
		return fmt.Errorf("%w: role %v", ErrInvalidParams, p.Role)
	}
	return nil
}

// ConfigWord is the configuration shifted into the front-end, first byte
// first, each byte MSB first.
//
//	[0]     payload width in bits
//	[1..5]  channel 2 address
//	[6..10] channel 1 address
//	[11]    ADDR_W(7:2) CRC_L(1) CRC_EN(0)
//	[12]    RX2_EN(7) CM(6) RFDR_SB(5) XO_F(4:2) RF_PWR(1:0)
//	[13]    RF_CH(7:1) RXEN(0)
type ConfigWord [ConfigWordBytes]byte

// EncodeWord validates the params and encodes them.
func (p Params) EncodeWord() (ConfigWord, error) {
	if err := p.Validate(); err != nil {
		return ConfigWord{}, err
	}
	return p.Word(), nil
}

// Word encodes the params. They must have passed Validate: widths of 32
// bytes or more wrap in their 8 bit fields.
func (p Params) Word() ConfigWord {
	var w ConfigWord
	w[0] = byte(p.PayloadWidth * 8)
	copy(w[1:6], p.Channel2Addr[:])
	copy(w[6:11], p.Channel1Addr[:])
	w[11] = byte(p.AddrWidth*8) << 2
	if p.CRC16 {
		w[11] |= 0x02
	}
	if p.CRCEnable {
		w[11] |= 0x01
	}
	if p.TwoChannel {
		w[12] |= 0x80
	}
	if p.ShockBurst {
		w[12] |= 0x40
	}
	w[12] |= byte(p.DataRate&1) << 5
	w[12] |= byte(p.Crystal&7) << 2
	w[12] |= byte(p.Power & 3)
	w[13] = byte(p.Channel&MaxChannel) << 1
	if p.Role == ModeReceive {
		w[13] |= 0x01
	}
	return w
}

// ParseConfigWord decodes a word.
func ParseConfigWord(w ConfigWord) Params {
	p := Params{
		PayloadWidth: int(w[0]) / 8,
		AddrWidth:    int(w[11]>>2) / 8,
		CRC16:        w[11]&0x02 != 0,
		CRCEnable:    w[11]&0x01 != 0,
		TwoChannel:   w[12]&0x80 != 0,
		ShockBurst:   w[12]&0x40 != 0,
		DataRate:     DataRate(w[12] >> 5 & 1),
		Crystal:      Crystal(w[12] >> 2 & 7),
		Power:        Power(w[12] & 3),
		Channel:      int(w[13] >> 1),
		Role:         ModeTransmit,
	}
	copy(p.Channel2Addr[:], w[1:6])
	copy(p.Channel1Addr[:], w[6:11])
	if w[13]&0x01 != 0 {
		p.Role = ModeReceive
	}
	return p
}

// Bits returns the word as the bit sequence on the DATA line.
func (w ConfigWord) Bits() []bool {
	return bitsOf(w[:])
}

// String implements fmt.Stringer.
func (w ConfigWord) String() string {
	return hex.EncodeToString(w[:])
}

func bitsOf(data []byte) []bool {
	bits := make([]bool, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, b>>uint(i)&1 != 0)
		}
	}
	return bits
}

// BytesOf packs MSB first bits into bytes. Trailing bits are dropped.
func BytesOf(bits []bool) []byte {
	out := make([]byte, len(bits)/8)
	for n := range out {
		var b byte
		for _, bit := range bits[n*8 : n*8+8] {
			b <<= 1
			if bit {
				b |= 1
			}
		}
		out[n] = b
	}
	return out
}
