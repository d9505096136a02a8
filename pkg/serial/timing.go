package serial

import "time"

// Tick is the timer resolution of the reference board (1MHz SMCLK / 8).
const Tick = 8 * time.Microsecond

// Timing holds the fixed bit timing shared with the peer.
type Timing struct {
	// BitPeriod is the duration of one bit on the line.
	BitPeriod time.Duration
	// HalfBit is the delay from the start edge to the start bit centre.
	HalfBit time.Duration
	// Lead is the delay before the start bit of a transmitted frame.
	Lead time.Duration
}

// DefaultTiming is 52 ticks per bit, about 2400 baud.
var DefaultTiming = Timing{
	BitPeriod: 52 * Tick,
	HalfBit:   26 * Tick,
	Lead:      52 * Tick,
}

// FrameBits is the number of bits in a frame.
const FrameBits = 10

// TimingForBaud derives timing from a baud rate, rounded to whole ticks.
func TimingForBaud(baud int) Timing {
	ticks := time.Duration((int64(time.Second/Tick) + int64(baud)/2) / int64(baud))
	if ticks < 2 {
		ticks = 2
	}
	return Timing{
		BitPeriod: ticks * Tick,
		HalfBit:   ticks / 2 * Tick,
		Lead:      ticks * Tick,
	}
}

// ByteTime is how long TransmitByte blocks.
func (t Timing) ByteTime() time.Duration {
	return t.Lead + FrameBits*t.BitPeriod
}

// Baud returns the nominal baud rate.
func (t Timing) Baud() int {
	if t.BitPeriod <= 0 {
		return 0
	}
	return int(time.Second / t.BitPeriod)
}
