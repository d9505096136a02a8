package door

import (
	"time"

	"github.com/robotalks/rfdoor/pkg/radio"
)

// Radio is the part of radio.Driver the controllers use.
type Radio interface {
	SetMode(radio.Mode) error
	HasData() bool
	ReceivePacketWithin(timeout time.Duration) ([]byte, error)
	TransmitPacket(buf []byte) error
	PayloadWidth() int
}

// Console receives progress text.
type Console interface {
	WriteLine(text string)
	WriteDecimal(b byte)
}

// SerialPort is a console that also receives, as serial.Engine.
type SerialPort interface {
	Console
	WriteByte(b byte) error
	ArmReceive()
	PollReceivedByte() (byte, bool)
}

// Console output of the receiver.
const (
	TextBanner  = "Client.\r\n"
	TextWaiting = "Waiting"
	TextOpen    = "Open      "
	TextSignal  = "Signal"
	TextCorrect = "Correct"
	TextData    = "Data"
)

// DefaultOpenThreshold is the number of idle polls the door stays open.
const DefaultOpenThreshold = 24

type discard struct{}

func (discard) WriteLine(string)  {}
func (discard) WriteDecimal(byte) {}

// Discard is a Console printing nothing.
var Discard Console = discard{}
