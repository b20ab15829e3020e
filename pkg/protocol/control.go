package protocol

import "errors"

// ErrInvalidControlType is returned when decoding an unknown control type.
var ErrInvalidControlType = errors.New("protocol: invalid control type")

// ControlType identifies the type of control message.
type ControlType uint8

const (
	ControlPing ControlType = 0x01 // Client/server ping
	ControlPong ControlType = 0x02 // Response to ping
	ControlBye  ControlType = 0x10 // Orderly shutdown notice
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlBye:
		return "Bye"
	default:
		return "Unknown"
	}
}

// ByeReason indicates why the connection is closing.
type ByeReason uint8

const (
	ByeNormal        ByeReason = 0x00 // Clean shutdown
	ByeGoingAway     ByeReason = 0x01 // Page navigating away
	ByeTimeout       ByeReason = 0x02 // Heartbeat timeout
	ByeShutdown      ByeReason = 0x03 // Server shutting down
	ByeProtocolError ByeReason = 0x04 // Protocol violation
)

// String returns the string representation of the bye reason.
func (br ByeReason) String() string {
	switch br {
	case ByeNormal:
		return "Normal"
	case ByeGoingAway:
		return "GoingAway"
	case ByeTimeout:
		return "Timeout"
	case ByeShutdown:
		return "Shutdown"
	case ByeProtocolError:
		return "ProtocolError"
	default:
		return "Unknown"
	}
}

// PingPong is the payload for Ping and Pong messages.
type PingPong struct {
	// Timestamp is the sender's time (Unix milliseconds).
	// Echoed back in Pong for RTT measurement.
	Timestamp uint64
}

// ByeMessage is sent before an orderly connection close.
type ByeMessage struct {
	// Reason for closing.
	Reason ByeReason

	// Optional human-readable message.
	Message string
}

// EncodeControl encodes a control message to bytes.
func EncodeControl(ct ControlType, payload any) []byte {
	e := NewEncoder()
	EncodeControlTo(e, ct, payload)
	return e.Bytes()
}

// EncodeControlTo encodes a control message using the provided encoder.
func EncodeControlTo(e *Encoder, ct ControlType, payload any) {
	e.WriteByte(byte(ct))

	switch ct {
	case ControlPing, ControlPong:
		if pp, ok := payload.(*PingPong); ok {
			e.WriteUint64(pp.Timestamp)
		} else {
			e.WriteUint64(0)
		}

	case ControlBye:
		if bm, ok := payload.(*ByeMessage); ok {
			e.WriteByte(byte(bm.Reason))
			e.WriteString(bm.Message)
		} else {
			e.WriteByte(byte(ByeNormal))
			e.WriteString("")
		}
	}
}

// DecodeControl decodes a control message from bytes.
// Returns the control type and the decoded payload.
func DecodeControl(data []byte) (ControlType, any, error) {
	d := NewDecoder(data)
	return DecodeControlFrom(d)
}

// DecodeControlFrom decodes a control message from a decoder.
func DecodeControlFrom(d *Decoder) (ControlType, any, error) {
	typeByte, err := d.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	ct := ControlType(typeByte)

	switch ct {
	case ControlPing, ControlPong:
		ts, err := d.ReadUint64()
		if err != nil {
			return ct, nil, err
		}
		return ct, &PingPong{Timestamp: ts}, nil

	case ControlBye:
		reason, err := d.ReadByte()
		if err != nil {
			return ct, nil, err
		}
		message, err := d.ReadString()
		if err != nil {
			return ct, nil, err
		}
		if err := checkFieldLen(len(message), MaxTextLen); err != nil {
			return ct, nil, err
		}
		return ct, &ByeMessage{
			Reason:  ByeReason(reason),
			Message: message,
		}, nil

	default:
		return ct, nil, ErrInvalidControlType
	}
}

// NewPing creates a ping message with the given timestamp.
func NewPing(timestamp uint64) (ControlType, *PingPong) {
	return ControlPing, &PingPong{Timestamp: timestamp}
}

// NewPong creates a pong message echoing the given timestamp.
func NewPong(timestamp uint64) (ControlType, *PingPong) {
	return ControlPong, &PingPong{Timestamp: timestamp}
}

// NewBye creates a bye message with the given reason.
func NewBye(reason ByeReason, message string) (ControlType, *ByeMessage) {
	return ControlBye, &ByeMessage{Reason: reason, Message: message}
}
