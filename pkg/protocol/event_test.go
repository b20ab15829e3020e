package protocol

import (
	"errors"
	"testing"

	"github.com/mote-dev/mote/pkg/host"
)

func TestEventEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		kind    EventKind
		payload any
	}{
		{
			name:    "fired_click",
			kind:    EventFired,
			payload: &FiredEvent{Listener: 7, Target: NodeRef(21), Type: "click"},
		},
		{
			name:    "fired_reserved_target",
			kind:    EventFired,
			payload: &FiredEvent{Listener: 1, Target: RefBody, Type: "submit"},
		},
		{
			name:    "fired_no_target",
			kind:    EventFired,
			payload: &FiredEvent{Listener: 3, Target: RefNone, Type: "load"},
		},
		{
			name:    "load_signal_primary",
			kind:    EventLoadSignal,
			payload: &LoadSignal{Signal: uint8(host.SignalPrimary)},
		},
		{
			name:    "load_signal_failsafe",
			kind:    EventLoadSignal,
			payload: &LoadSignal{Signal: uint8(host.SignalFailsafe)},
		},
		{
			name:    "state_change",
			kind:    EventStateChange,
			payload: &StateChange{State: uint8(host.ReadyComplete)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := EncodeEvent(tc.kind, tc.payload)
			decodedKind, decodedPayload, err := DecodeEvent(encoded)
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}

			if decodedKind != tc.kind {
				t.Errorf("Kind = %v, want %v", decodedKind, tc.kind)
			}

			verifyEventPayload(t, decodedPayload, tc.payload)
		})
	}
}

func verifyEventPayload(t *testing.T, got, want any) {
	t.Helper()

	switch w := want.(type) {
	case *FiredEvent:
		g, ok := got.(*FiredEvent)
		if !ok {
			t.Errorf("Payload type = %T, want *FiredEvent", got)
			return
		}
		if g.Listener != w.Listener {
			t.Errorf("Listener = %d, want %d", g.Listener, w.Listener)
		}
		if g.Target != w.Target {
			t.Errorf("Target = %d, want %d", g.Target, w.Target)
		}
		if g.Type != w.Type {
			t.Errorf("Type = %q, want %q", g.Type, w.Type)
		}

	case *LoadSignal:
		g, ok := got.(*LoadSignal)
		if !ok {
			t.Errorf("Payload type = %T, want *LoadSignal", got)
			return
		}
		if g.Signal != w.Signal {
			t.Errorf("Signal = %d, want %d", g.Signal, w.Signal)
		}

	case *StateChange:
		g, ok := got.(*StateChange)
		if !ok {
			t.Errorf("Payload type = %T, want *StateChange", got)
			return
		}
		if g.State != w.State {
			t.Errorf("State = %d, want %d", g.State, w.State)
		}

	default:
		t.Errorf("unhandled payload type %T", want)
	}
}

func TestEventConstructors(t *testing.T) {
	kind, fe := NewFiredEvent(5, NodeRef(33), "input")
	if kind != EventFired {
		t.Errorf("NewFiredEvent kind = %v, want EventFired", kind)
	}
	if fe.Listener != 5 || fe.Target != NodeRef(33) || fe.Type != "input" {
		t.Errorf("NewFiredEvent payload = %+v", fe)
	}

	kind, ls := NewLoadSignal(host.SignalFailsafe)
	if kind != EventLoadSignal {
		t.Errorf("NewLoadSignal kind = %v, want EventLoadSignal", kind)
	}
	if ls.HostSignal() != host.SignalFailsafe {
		t.Errorf("HostSignal() = %v, want SignalFailsafe", ls.HostSignal())
	}

	kind, sc := NewStateChange(host.ReadyInteractive)
	if kind != EventStateChange {
		t.Errorf("NewStateChange kind = %v, want EventStateChange", kind)
	}
	if sc.HostState() != host.ReadyInteractive {
		t.Errorf("HostState() = %v, want ReadyInteractive", sc.HostState())
	}
}

func TestDecodeEventUnknownKind(t *testing.T) {
	_, _, err := DecodeEvent([]byte{0xEE})
	if !errors.Is(err, ErrInvalidEventKind) {
		t.Errorf("DecodeEvent(unknown) = %v, want ErrInvalidEventKind", err)
	}
}

func TestDecodeEventEmpty(t *testing.T) {
	_, _, err := DecodeEvent([]byte{})
	if err == nil {
		t.Error("DecodeEvent(empty) succeeded, want error")
	}
}

func TestDecodeFiredEventTypeTooLong(t *testing.T) {
	long := make([]byte, MaxNameLen+1)
	for i := range long {
		long[i] = 'x'
	}

	encoded := EncodeEvent(EventFired, &FiredEvent{Listener: 1, Type: string(long)})
	_, _, err := DecodeEvent(encoded)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("DecodeEvent(long type) = %v, want ErrFieldTooLong", err)
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventFired, "Fired"},
		{EventLoadSignal, "LoadSignal"},
		{EventStateChange, "StateChange"},
		{EventKind(0xFF), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestFiredEventSize(t *testing.T) {
	// A click notification should stay in single digits of bytes.
	encoded := EncodeEvent(EventFired, &FiredEvent{Listener: 3, Target: NodeRef(40), Type: "click"})
	if len(encoded) > 10 {
		t.Errorf("fired click = %d bytes, want <= 10", len(encoded))
	}
}
