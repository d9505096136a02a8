package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
)

// TypeID masks
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
)

// Message kinds
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// TypeID groups
const (
	GroupDoor   uint32 = 0x00010000
	GroupCustom uint32 = 0x7f000000
)

// TypeIDs
const (
	DoorEventTypeID  = TypeIDKindEvent | GroupDoor | 0x0001
	UnitStatusTypeID = TypeIDKindEvent | GroupDoor | 0x0002
)

// ErrUnknownType indicates an unregistered type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %08x", e.TypeID)
}

// ErrNotSerializable indicates the message has no type id.
var ErrNotSerializable = errors.New("not serializable message")

// Serializable is a message with a registered type id.
type Serializable interface {
	proto.Message
	TypeID() uint32
	NewMessage() Serializable
}

// MessageTypes maps type ids to prototypes.
var MessageTypes = map[uint32]Serializable{
	DoorEventTypeID:  (*DoorEvent)(nil),
	UnitStatusTypeID: (*UnitStatus)(nil),
}

// Typed is the envelope put on the wire.
type Typed struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// TypedFrom wraps msg in an envelope.
func TypedFrom(msg interface{}) (*Typed, error) {
	s, ok := msg.(Serializable)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// EncodeTyped wraps msg and encodes the envelope.
func EncodeTyped(msg interface{}) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// Decode decodes the wrapped message.
func (p *Typed) Decode() (Serializable, error) {
	prototype, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := prototype.NewMessage()
	if err := proto.Unmarshal(p.Message, msg); err != nil {
		return nil, fmt.Errorf("decode %08x: %w", p.TypeId, err)
	}
	return msg, nil
}

// Encode encodes the envelope.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// IsEvent reports whether the type id is of the event kind.
func (p *Typed) IsEvent() bool {
	return p.TypeId&TypeIDMaskKind == TypeIDKindEvent
}

// DecodeTyped decodes an envelope.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// DecodeMessage decodes an envelope and the message in it.
func DecodeMessage(data []byte) (Serializable, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}
