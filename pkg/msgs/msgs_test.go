package msgs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoorEventThroughEnvelope(t *testing.T) {
	at := time.Unix(1500000000, 42)
	ev := NewDoorEvent("door-1", EventOpened, at)
	ev.Payload = []byte{6, 5, 4, 3, 2, 1}
	ev.Count = 3

	data, err := EncodeTyped(ev)
	require.NoError(t, err)
	typed, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, DoorEventTypeID, typed.TypeId)
	require.True(t, typed.IsEvent())

	msg, err := typed.Decode()
	require.NoError(t, err)
	decoded, ok := msg.(*DoorEvent)
	require.True(t, ok)
	require.Equal(t, ev, decoded)
	require.Equal(t, at, decoded.Time())
}

func TestUnitStatusThroughEnvelope(t *testing.T) {
	st := &UnitStatus{Unit: "door-1", Role: "receive", Open: true, Config: "30000000", Events: 7}
	data, err := EncodeTyped(st)
	require.NoError(t, err)
	msg, err := DecodeMessage(data)
	require.NoError(t, err)
	require.Equal(t, st, msg)
}

func TestUnknownType(t *testing.T) {
	data, err := (&Typed{TypeId: GroupCustom | 5}).Encode()
	require.NoError(t, err)
	_, err = DecodeMessage(data)
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 5}, err)
	require.Equal(t, "unknown type: 7f000005", err.Error())
}

func TestNotSerializable(t *testing.T) {
	_, err := TypedFrom("text")
	require.Equal(t, ErrNotSerializable, err)
}

func TestGarbage(t *testing.T) {
	_, err := DecodeTyped([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestUnitStatusApply(t *testing.T) {
	var st UnitStatus
	at := time.Unix(10, 0)
	st.Apply(NewDoorEvent("u", EventSignal, at))
	require.False(t, st.Open)
	st.Apply(NewDoorEvent("u", EventOpened, at))
	require.True(t, st.Open)
	st.Apply(NewDoorEvent("u", EventClosed, at.Add(time.Second)))
	require.False(t, st.Open)
	require.EqualValues(t, 3, st.Events)
	require.Equal(t, at.Add(time.Second).UnixNano(), st.TimeUnixNano)
}

func TestEventKindString(t *testing.T) {
	require.Equal(t, "opened", EventOpened.String())
	require.Equal(t, "fault", EventFault.String())
	require.Equal(t, "unknown", EventKind(99).String())
}
