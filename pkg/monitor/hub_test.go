package monitor

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/rfdoor/pkg/comm"
	"github.com/robotalks/rfdoor/pkg/comm/cache"
	"github.com/robotalks/rfdoor/pkg/comm/mqtt"
	"github.com/robotalks/rfdoor/pkg/comm/stream"
	"github.com/robotalks/rfdoor/pkg/console"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

type packets struct {
	items [][]byte
}

func (p *packets) writer() comm.PacketWriter {
	return comm.PacketWriterFunc(func(pkt []byte) error {
		p.items = append(p.items, pkt)
		return nil
	})
}

func (p *packets) decode(t *testing.T) []msgs.Serializable {
	res := make([]msgs.Serializable, len(p.items))
	for n, pkt := range p.items {
		msg, err := msgs.DecodeMessage(pkt)
		require.NoError(t, err)
		res[n] = msg
	}
	return res
}

func TestHandleMsg(t *testing.T) {
	h := NewHub(cache.NewMemory())
	var out packets
	h.Writers.Add(out.writer())

	at := time.Unix(10, 0)
	h.HandleMsg("door", &msgs.UnitStatus{Unit: "door", Role: "receive"})
	h.HandleMsg("door", msgs.NewDoorEvent("door", msgs.EventOpened, at))
	h.HandleMsg("key", msgs.NewDoorEvent("key", msgs.EventSent, at))

	got := out.decode(t)
	require.Len(t, got, 3)
	require.Equal(t, msgs.EventOpened, got[1].(*msgs.DoorEvent).Kind)

	st, err := h.Tracker.Store.Get("door")
	require.NoError(t, err)
	require.True(t, st.Open)
	require.Equal(t, "receive", st.Role)

	greeting := h.Greeting()
	require.Len(t, greeting, 2)
	msg, err := msgs.DecodeMessage(greeting[0])
	require.NoError(t, err)
	require.Equal(t, "door", msg.(*msgs.UnitStatus).Unit)
}

func TestHandleMeta(t *testing.T) {
	h := NewHub(cache.NewMemory())
	h.HandleMeta("door", &mqtt.UnitMeta{Role: "receiver"})
	require.Equal(t, "receiver", h.Meta("door").Role)
	h.HandleMeta("door", nil)
	require.Nil(t, h.Meta("door"))
}

func TestConsoleHandler(t *testing.T) {
	h := NewHub(cache.NewMemory())
	var out packets
	h.Writers.Add(out.writer())

	src := strings.NewReader("Client.\r\nWaitingSignal654321CorrectWaiting")
	r := console.NewReader(src, 6, h.ConsoleHandler("door"))
	require.NoError(t, r.Run(context.Background()))

	got := out.decode(t)
	require.Len(t, got, 2)
	require.Equal(t, msgs.EventSignal, got[0].(*msgs.DoorEvent).Kind)
	opened := got[1].(*msgs.DoorEvent)
	require.Equal(t, msgs.EventOpened, opened.Kind)
	require.Equal(t, []byte{6, 5, 4, 3, 2, 1}, opened.Payload)

	st, err := h.Tracker.Store.Get("door")
	require.NoError(t, err)
	require.True(t, st.Open)
}

func TestReplay(t *testing.T) {
	var buf bytes.Buffer
	w := stream.NewWriter(&buf)
	sink := comm.NewEventSink(w)
	require.NoError(t, sink.Send(&msgs.UnitStatus{Unit: "door"}))
	require.NoError(t, sink.Send(msgs.NewDoorEvent("door", msgs.EventOpened, time.Unix(1, 0))))
	require.NoError(t, sink.Send(msgs.NewDoorEvent("key", msgs.EventSent, time.Unix(1, 0))))

	h := NewHub(cache.NewMemory())
	require.NoError(t, h.Replay(context.Background(), stream.NewReader(&buf)))
	all, err := h.Tracker.Store.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[0].Open)
	require.Equal(t, "key", all[1].Unit)
}
