package bench

import (
	"time"

	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/sim"
	"github.com/robotalks/rfdoor/pkg/serial"
)

// DecodeSerial recovers frames of an idle high line from recorded
// transitions, sampling like the receive engine: half a bit after the
// start edge, then every bit period, LSB first. Frames starting at or
// after from and complete before to are returned along with the time
// to resume decoding from.
func DecodeSerial(rec *sim.Recorder, line string, from, to time.Duration, t serial.Timing) ([]byte, time.Duration) {
	var (
		out  []byte
		next = from
	)
	for _, tr := range rec.Transitions(line) {
		if tr.At < next || tr.Level != hal.Low {
			continue
		}
		stop := tr.At + t.HalfBit + 9*t.BitPeriod
		if stop > to {
			break
		}
		var v byte
		for bit := 0; bit < 8; bit++ {
			lvl, _ := rec.LevelAt(line, tr.At+t.HalfBit+time.Duration(bit+1)*t.BitPeriod)
			if lvl == hal.High {
				v |= 1 << uint(bit)
			}
		}
		out = append(out, v)
		next = stop
	}
	return out, next
}
