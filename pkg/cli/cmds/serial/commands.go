package serial

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rfdoor/pkg/bench"
	"github.com/robotalks/rfdoor/pkg/cli/sh"
)

// Transfer is the result of serial commands.
type Transfer struct {
	Sent     string `json:"sent,omitempty"`
	Received string `json:"received"`
}

func (t *Transfer) String() string {
	if t.Sent != "" {
		return fmt.Sprintf("sent %q, door received %q", t.Sent, t.Received)
	}
	return fmt.Sprintf("%q", t.Received)
}

// Send writes the arguments, joined by spaces, to the door console.
func Send(b *bench.Bench, args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("TEXT required")
	}
	text := strings.Join(args, " ")
	return &Transfer{Sent: text, Received: string(b.SendSerial(text))}, nil
}

// Recv returns what the door printed since the last call.
func Recv(b *bench.Bench, args []string) (interface{}, error) {
	return &Transfer{Received: string(b.ReceiveSerial())}, nil
}

var (
	// SendCmd exposes Send.
	SendCmd = ishell.Cmd{
		Name:    "serial.send",
		Aliases: []string{"ss"},
		Help:    "TEXT",
		Func:    sh.BenchCmd(Send),
	}

	// RecvCmd exposes Recv.
	RecvCmd = ishell.Cmd{
		Name:    "serial.recv",
		Aliases: []string{"sr"},
		Help:    "",
		Func:    sh.BenchCmd(Recv),
	}
)

func init() {
	sh.AddCmds(&SendCmd, &RecvCmd)
}
