package protocol

import (
	"testing"
)

func TestControlEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		ct      ControlType
		payload any
	}{
		{
			name:    "ping",
			ct:      ControlPing,
			payload: &PingPong{Timestamp: 1702000000000},
		},
		{
			name:    "pong",
			ct:      ControlPong,
			payload: &PingPong{Timestamp: 1702000000001},
		},
		{
			name: "bye_normal",
			ct:   ControlBye,
			payload: &ByeMessage{
				Reason:  ByeNormal,
				Message: "",
			},
		},
		{
			name: "bye_with_message",
			ct:   ControlBye,
			payload: &ByeMessage{
				Reason:  ByeShutdown,
				Message: "Server is restarting",
			},
		},
		{
			name: "bye_going_away",
			ct:   ControlBye,
			payload: &ByeMessage{
				Reason: ByeGoingAway,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeControl(tc.ct, tc.payload)
			decodedType, decodedPayload, err := DecodeControl(encoded)
			if err != nil {
				t.Fatalf("DecodeControl() error = %v", err)
			}

			if decodedType != tc.ct {
				t.Errorf("Type = %v, want %v", decodedType, tc.ct)
			}

			verifyControlPayload(t, decodedPayload, tc.payload)
		})
	}
}

func verifyControlPayload(t *testing.T, got, want any) {
	t.Helper()

	switch w := want.(type) {
	case *PingPong:
		g, ok := got.(*PingPong)
		if !ok {
			t.Errorf("Payload type = %T, want *PingPong", got)
			return
		}
		if g.Timestamp != w.Timestamp {
			t.Errorf("Timestamp = %d, want %d", g.Timestamp, w.Timestamp)
		}

	case *ByeMessage:
		g, ok := got.(*ByeMessage)
		if !ok {
			t.Errorf("Payload type = %T, want *ByeMessage", got)
			return
		}
		if g.Reason != w.Reason {
			t.Errorf("Reason = %v, want %v", g.Reason, w.Reason)
		}
		if g.Message != w.Message {
			t.Errorf("Message = %q, want %q", g.Message, w.Message)
		}

	default:
		t.Errorf("unhandled payload type %T", want)
	}
}

func TestControlConstructors(t *testing.T) {
	ct, ping := NewPing(123)
	if ct != ControlPing || ping.Timestamp != 123 {
		t.Errorf("NewPing = %v, %+v", ct, ping)
	}

	ct, pong := NewPong(456)
	if ct != ControlPong || pong.Timestamp != 456 {
		t.Errorf("NewPong = %v, %+v", ct, pong)
	}

	ct, bye := NewBye(ByeTimeout, "no heartbeat")
	if ct != ControlBye || bye.Reason != ByeTimeout || bye.Message != "no heartbeat" {
		t.Errorf("NewBye = %v, %+v", ct, bye)
	}
}

func TestDecodeControlUnknownType(t *testing.T) {
	_, _, err := DecodeControl([]byte{0xEE})
	if err != ErrInvalidControlType {
		t.Errorf("DecodeControl(unknown) = %v, want ErrInvalidControlType", err)
	}
}

func TestDecodeControlEmpty(t *testing.T) {
	_, _, err := DecodeControl([]byte{})
	if err == nil {
		t.Error("DecodeControl(empty) succeeded, want error")
	}
}

func TestControlTypeString(t *testing.T) {
	tests := []struct {
		ct   ControlType
		want string
	}{
		{ControlPing, "Ping"},
		{ControlPong, "Pong"},
		{ControlBye, "Bye"},
		{ControlType(0xFF), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.ct.String(); got != tc.want {
			t.Errorf("ControlType(%d).String() = %q, want %q", tc.ct, got, tc.want)
		}
	}
}

func TestByeReasonString(t *testing.T) {
	tests := []struct {
		reason ByeReason
		want   string
	}{
		{ByeNormal, "Normal"},
		{ByeGoingAway, "GoingAway"},
		{ByeTimeout, "Timeout"},
		{ByeShutdown, "Shutdown"},
		{ByeProtocolError, "ProtocolError"},
		{ByeReason(0xFF), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.reason.String(); got != tc.want {
			t.Errorf("ByeReason(%d).String() = %q, want %q", tc.reason, got, tc.want)
		}
	}
}

func TestEncodeControlNilPayload(t *testing.T) {
	// Encoding with a nil payload falls back to zero values rather than
	// producing a malformed message.
	encoded := EncodeControl(ControlBye, nil)
	ct, payload, err := DecodeControl(encoded)
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	if ct != ControlBye {
		t.Errorf("Type = %v, want ControlBye", ct)
	}
	bm, ok := payload.(*ByeMessage)
	if !ok {
		t.Fatalf("Payload type = %T, want *ByeMessage", payload)
	}
	if bm.Reason != ByeNormal || bm.Message != "" {
		t.Errorf("Payload = %+v, want zero ByeMessage", bm)
	}
}
