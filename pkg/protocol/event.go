package protocol

import (
	"errors"

	"github.com/mote-dev/mote/pkg/host"
)

// EventKind identifies a client notification. Notifications flow client →
// server only, are unacknowledged, and arrive in document order.
type EventKind uint8

const (
	EventFired       EventKind = 0x01 // A registered listener observed its event
	EventLoadSignal  EventKind = 0x02 // The document delivered a load signal
	EventStateChange EventKind = 0x03 // The ready state advanced
)

// String returns the string representation of the event kind.
func (ek EventKind) String() string {
	switch ek {
	case EventFired:
		return "Fired"
	case EventLoadSignal:
		return "LoadSignal"
	case EventStateChange:
		return "StateChange"
	default:
		return "Unknown"
	}
}

// Event encoding errors.
var (
	ErrInvalidEventKind = errors.New("protocol: invalid event kind")
	ErrInvalidPayload   = errors.New("protocol: invalid event payload")
)

// FiredEvent reports one delivery of a registered listener.
type FiredEvent struct {
	Listener uint32  // Listener ID assigned in the OpListen reply
	Target   NodeRef // Element the event originated on
	Type     string  // Event type as the document reported it
}

// LoadSignal reports a document load signal.
type LoadSignal struct {
	Signal uint8 // host.LoadSignal value
}

// HostSignal returns the wire value as a host load signal.
func (ls *LoadSignal) HostSignal() host.LoadSignal {
	return host.LoadSignal(ls.Signal)
}

// StateChange reports a document ready state transition.
type StateChange struct {
	State uint8 // host.ReadyState value
}

// HostState returns the wire value as a host ready state.
func (sc *StateChange) HostState() host.ReadyState {
	return host.ReadyState(sc.State)
}

// EncodeEvent encodes a client notification to bytes.
func EncodeEvent(ek EventKind, payload any) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ek, payload)
	return e.Bytes()
}

// EncodeEventTo encodes a client notification using the provided encoder.
func EncodeEventTo(e *Encoder, ek EventKind, payload any) {
	e.WriteByte(byte(ek))

	switch ek {
	case EventFired:
		if fe, ok := payload.(*FiredEvent); ok {
			e.WriteUvarint(uint64(fe.Listener))
			e.WriteUvarint(uint64(fe.Target))
			e.WriteString(fe.Type)
		} else {
			e.WriteUvarint(0)
			e.WriteUvarint(0)
			e.WriteString("")
		}

	case EventLoadSignal:
		if ls, ok := payload.(*LoadSignal); ok {
			e.WriteByte(ls.Signal)
		} else {
			e.WriteByte(0)
		}

	case EventStateChange:
		if sc, ok := payload.(*StateChange); ok {
			e.WriteByte(sc.State)
		} else {
			e.WriteByte(0)
		}
	}
}

// DecodeEvent decodes a client notification from bytes.
// Returns the event kind and the decoded payload.
func DecodeEvent(data []byte) (EventKind, any, error) {
	d := NewDecoder(data)
	return DecodeEventFrom(d)
}

// DecodeEventFrom decodes a client notification from a decoder.
func DecodeEventFrom(d *Decoder) (EventKind, any, error) {
	kindByte, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ek := EventKind(kindByte)

	switch ek {
	case EventFired:
		listener, err := d.ReadUvarint()
		if err != nil {
			return ek, nil, err
		}
		target, err := d.ReadUvarint()
		if err != nil {
			return ek, nil, err
		}
		typ, err := d.ReadString()
		if err != nil {
			return ek, nil, err
		}
		if err := checkFieldLen(len(typ), MaxNameLen); err != nil {
			return ek, nil, err
		}
		return ek, &FiredEvent{
			Listener: uint32(listener),
			Target:   NodeRef(target),
			Type:     typ,
		}, nil

	case EventLoadSignal:
		sig, err := d.ReadByte()
		if err != nil {
			return ek, nil, err
		}
		return ek, &LoadSignal{Signal: sig}, nil

	case EventStateChange:
		state, err := d.ReadByte()
		if err != nil {
			return ek, nil, err
		}
		return ek, &StateChange{State: state}, nil

	default:
		return ek, nil, ErrInvalidEventKind
	}
}

// NewFiredEvent creates a listener delivery notification.
func NewFiredEvent(listener uint32, target NodeRef, typ string) (EventKind, *FiredEvent) {
	return EventFired, &FiredEvent{Listener: listener, Target: target, Type: typ}
}

// NewLoadSignal creates a load signal notification.
func NewLoadSignal(sig host.LoadSignal) (EventKind, *LoadSignal) {
	return EventLoadSignal, &LoadSignal{Signal: uint8(sig)}
}

// NewStateChange creates a ready state notification.
func NewStateChange(state host.ReadyState) (EventKind, *StateChange) {
	return EventStateChange, &StateChange{State: uint8(state)}
}
