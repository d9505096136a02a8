package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"
)

// EventKind classifies door events.
type EventKind int32

// Event kinds.
const (
	EventUnknown EventKind = iota
	// EventSignal is raised when the radio reports data ready.
	EventSignal
	// EventOpened is raised when a valid payload opened the door.
	EventOpened
	// EventClosed is raised when the open period expired.
	EventClosed
	// EventRejected is raised for a payload that failed validation.
	EventRejected
	// EventFault is raised for driver errors, e.g. a stuck DR line.
	EventFault
	// EventSent is raised by a handheld for each payload sent.
	EventSent
)

var eventKindNames = map[EventKind]string{
	EventUnknown:  "unknown",
	EventSignal:   "signal",
	EventOpened:   "opened",
	EventClosed:   "closed",
	EventRejected: "rejected",
	EventFault:    "fault",
	EventSent:     "sent",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// DoorEvent is reported by a unit.
type DoorEvent struct {
	Unit         string    `protobuf:"bytes,1,opt,name=unit,proto3" json:"unit,omitempty"`
	Kind         EventKind `protobuf:"varint,2,opt,name=kind,proto3" json:"kind,omitempty"`
	Payload      []byte    `protobuf:"bytes,3,opt,name=payload,proto3" json:"payload,omitempty"`
	Count        uint32    `protobuf:"varint,4,opt,name=count,proto3" json:"count,omitempty"`
	TimeUnixNano int64     `protobuf:"varint,5,opt,name=time_unix_nano,proto3" json:"time_unix_nano,omitempty"`
	Detail       string    `protobuf:"bytes,6,opt,name=detail,proto3" json:"detail,omitempty"`
}

// NewDoorEvent creates an event stamped with t.
func NewDoorEvent(unit string, kind EventKind, t time.Time) *DoorEvent {
	return &DoorEvent{Unit: unit, Kind: kind, TimeUnixNano: t.UnixNano()}
}

// Time returns the event time.
func (m *DoorEvent) Time() time.Time {
	return time.Unix(0, m.TimeUnixNano)
}

// NewMessage implements Serializable.
func (m *DoorEvent) NewMessage() Serializable { return &DoorEvent{} }

// TypeID implements Serializable.
func (m *DoorEvent) TypeID() uint32 { return DoorEventTypeID }

// ProtoMessage implements proto.Message.
func (m *DoorEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DoorEvent) Reset() { *m = DoorEvent{} }

// String implements proto.Message.
func (m *DoorEvent) String() string { return proto.CompactTextString(m) }

// UnitStatus is the last known state of a unit.
type UnitStatus struct {
	Unit   string `protobuf:"bytes,1,opt,name=unit,proto3" json:"unit,omitempty"`
	Role   string `protobuf:"bytes,2,opt,name=role,proto3" json:"role,omitempty"`
	Open   bool   `protobuf:"varint,3,opt,name=open,proto3" json:"open,omitempty"`
	Config string `protobuf:"bytes,4,opt,name=config,proto3" json:"config,omitempty"`
	Events uint32 `protobuf:"varint,5,opt,name=events,proto3" json:"events,omitempty"`
	// TimeUnixNano is when the status was taken.
	TimeUnixNano int64 `protobuf:"varint,6,opt,name=time_unix_nano,proto3" json:"time_unix_nano,omitempty"`
}

// Apply updates the status from an event of the same unit.
func (m *UnitStatus) Apply(ev *DoorEvent) {
	m.Events++
	m.TimeUnixNano = ev.TimeUnixNano
	switch ev.Kind {
	case EventOpened:
		m.Open = true
	case EventClosed:
		m.Open = false
	}
}

// NewMessage implements Serializable.
func (m *UnitStatus) NewMessage() Serializable { return &UnitStatus{} }

// TypeID implements Serializable.
func (m *UnitStatus) TypeID() uint32 { return UnitStatusTypeID }

// ProtoMessage implements proto.Message.
func (m *UnitStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *UnitStatus) Reset() { *m = UnitStatus{} }

// String implements proto.Message.
func (m *UnitStatus) String() string { return proto.CompactTextString(m) }
