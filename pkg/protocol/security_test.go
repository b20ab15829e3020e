package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/mote-dev/mote/pkg/host"
)

// =============================================================================
// Allocation Limit Tests
// =============================================================================

// TestAllocationLimits verifies that allocation limits are enforced.
func TestAllocationLimits(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{
			name:    "string exceeds limit",
			payload: makeOversizedStringPayload(DefaultMaxAllocation + 1),
			wantErr: ErrAllocationTooLarge,
		},
		{
			name:    "collection exceeds limit",
			payload: makeOversizedCollectionPayload(MaxCollectionCount + 1),
			wantErr: ErrCollectionTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.payload)
			switch tt.name {
			case "string exceeds limit":
				_, err := d.ReadString()
				if err != tt.wantErr {
					t.Errorf("ReadString() error = %v, want %v", err, tt.wantErr)
				}
			case "collection exceeds limit":
				_, err := d.ReadCollectionCount()
				if err != tt.wantErr {
					t.Errorf("ReadCollectionCount() error = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

// TestFieldLengthLimits verifies every string field a peer controls is
// bounded by its message decoder.
func TestFieldLengthLimits(t *testing.T) {
	tests := []struct {
		name   string
		decode func() error
	}{
		{
			name: "client hello session id",
			decode: func() error {
				h := &ClientHello{Version: CurrentVersion, SessionID: strings.Repeat("s", MaxSessionIDLen+1)}
				_, err := DecodeClientHello(EncodeClientHello(h))
				return err
			},
		},
		{
			name: "client hello page url",
			decode: func() error {
				h := &ClientHello{Version: CurrentVersion, PageURL: strings.Repeat("u", MaxURLLen+1)}
				_, err := DecodeClientHello(EncodeClientHello(h))
				return err
			},
		},
		{
			name: "server hello session id",
			decode: func() error {
				h := NewServerHello(strings.Repeat("s", MaxSessionIDLen+1), 0, 0)
				_, err := DecodeServerHello(EncodeServerHello(h))
				return err
			},
		},
		{
			name: "op request selector",
			decode: func() error {
				op := NewQueryOp(1, RefNone, strings.Repeat(".a", MaxSelectorLen))
				_, err := DecodeOpRequest(EncodeOpRequest(op))
				return err
			},
		},
		{
			name: "op request name",
			decode: func() error {
				op := NewGetAttrOp(1, RefBody, strings.Repeat("n", MaxNameLen+1))
				_, err := DecodeOpRequest(EncodeOpRequest(op))
				return err
			},
		},
		{
			name: "op request value",
			decode: func() error {
				op := NewSetAttrOp(1, RefBody, "class", strings.Repeat("v", MaxValueLen+1))
				_, err := DecodeOpRequest(EncodeOpRequest(op))
				return err
			},
		},
		{
			name: "op reply value",
			decode: func() error {
				r := &OpReply{Seq: 1, Status: OpOK, Value: strings.Repeat("v", MaxSnapshotLen+1)}
				_, err := DecodeOpReply(EncodeOpReply(r))
				return err
			},
		},
		{
			name: "op reply error text",
			decode: func() error {
				r := NewFailedReply(1, OpFailed, strings.Repeat("e", MaxTextLen+1))
				_, err := DecodeOpReply(EncodeOpReply(r))
				return err
			},
		},
		{
			name: "fired event type",
			decode: func() error {
				fe := &FiredEvent{Listener: 1, Type: strings.Repeat("t", MaxNameLen+1)}
				_, _, err := DecodeEvent(EncodeEvent(EventFired, fe))
				return err
			},
		},
		{
			name: "bye message text",
			decode: func() error {
				_, bm := NewBye(ByeNormal, strings.Repeat("m", MaxTextLen+1))
				_, _, err := DecodeControl(EncodeControl(ControlBye, bm))
				return err
			},
		},
		{
			name: "error message text",
			decode: func() error {
				em := NewError(ErrUnknown, strings.Repeat("m", MaxTextLen+1))
				_, err := DecodeErrorMessage(EncodeErrorMessage(em))
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decode(); !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("decode error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

// TestTruncatedMessages verifies that every strict prefix of a valid message
// fails cleanly instead of panicking or mis-decoding.
func TestTruncatedMessages(t *testing.T) {
	caps := host.Capabilities{NativeQuery: true, ModernEvents: true}

	tests := []struct {
		name    string
		encoded []byte
		decode  func([]byte) error
	}{
		{
			name:    "client hello",
			encoded: EncodeClientHello(NewClientHello("https://example.com/", host.ReadyComplete, caps, 1024, 768)),
			decode: func(b []byte) error {
				_, err := DecodeClientHello(b)
				return err
			},
		},
		{
			name:    "server hello",
			encoded: EncodeServerHello(NewServerHello("session-1", 1702000000000, ServerFlagResumed)),
			decode: func(b []byte) error {
				_, err := DecodeServerHello(b)
				return err
			},
		},
		{
			name:    "op request",
			encoded: EncodeOpRequest(NewSetAttrOp(9, NodeRef(30), "class", "wrap")),
			decode: func(b []byte) error {
				_, err := DecodeOpRequest(b)
				return err
			},
		},
		{
			name:    "op reply",
			encoded: EncodeOpReply(&OpReply{Seq: 9, Status: OpOK, Refs: []NodeRef{16, 17}}),
			decode: func(b []byte) error {
				_, err := DecodeOpReply(b)
				return err
			},
		},
		{
			name:    "fired event",
			encoded: EncodeEvent(EventFired, &FiredEvent{Listener: 2, Target: NodeRef(18), Type: "click"}),
			decode: func(b []byte) error {
				_, _, err := DecodeEvent(b)
				return err
			},
		},
		{
			name:    "bye",
			encoded: EncodeControl(NewBye(ByeShutdown, "restarting")),
			decode: func(b []byte) error {
				_, _, err := DecodeControl(b)
				return err
			},
		},
		{
			name:    "error message",
			encoded: EncodeErrorMessage(NewFatalError(ErrSessionExpired, "expired")),
			decode: func(b []byte) error {
				_, err := DecodeErrorMessage(b)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < len(tt.encoded); i++ {
				if err := tt.decode(tt.encoded[:i]); err == nil {
					t.Errorf("decode(truncated at %d) succeeded, want error", i)
				}
			}
		})
	}
}

// TestMaliciousRefCount verifies a reply claiming more refs than it carries
// is rejected.
func TestMaliciousRefCount(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)      // seq
	e.WriteByte(0x00)      // status OK
	e.WriteBool(false)     // flag
	e.WriteUvarint(0)      // id
	e.WriteByte(0)         // state
	e.WriteString("")      // value
	e.WriteString("")      // error
	e.WriteUvarint(50_000) // claims 50k refs
	e.WriteByte(0x10)      // but carries one byte

	if _, err := DecodeOpReply(e.Bytes()); err == nil {
		t.Error("DecodeOpReply(malicious count) succeeded, want error")
	}
}

// TestValidInputsStillWork verifies that valid inputs work after adding limits.
func TestValidInputsStillWork(t *testing.T) {
	t.Run("normal hello", func(t *testing.T) {
		caps := host.Capabilities{NativeQuery: true, NativeMatch: true, ModernEvents: true}
		h := NewClientHello("https://example.com/dash", host.ReadyInteractive, caps, 1440, 900)

		decoded, err := DecodeClientHello(EncodeClientHello(h))
		if err != nil {
			t.Fatalf("DecodeClientHello() error = %v", err)
		}
		if decoded.PageURL != h.PageURL {
			t.Errorf("PageURL = %q, want %q", decoded.PageURL, h.PageURL)
		}
		if decoded.Capabilities() != caps {
			t.Errorf("Capabilities() = %+v, want %+v", decoded.Capabilities(), caps)
		}
	})

	t.Run("normal op round trip", func(t *testing.T) {
		op := NewQueryOp(12, RefNone, "#list .item")
		decodedOp, err := DecodeOpRequest(EncodeOpRequest(op))
		if err != nil {
			t.Fatalf("DecodeOpRequest() error = %v", err)
		}
		if decodedOp.Selector != "#list .item" {
			t.Errorf("Selector = %q, want %q", decodedOp.Selector, "#list .item")
		}

		reply := &OpReply{Seq: 12, Status: OpOK, Refs: []NodeRef{16, 17, 18}}
		decodedReply, err := DecodeOpReply(EncodeOpReply(reply))
		if err != nil {
			t.Fatalf("DecodeOpReply() error = %v", err)
		}
		if len(decodedReply.Refs) != 3 {
			t.Errorf("len(Refs) = %d, want 3", len(decodedReply.Refs))
		}
	})

	t.Run("normal notifications", func(t *testing.T) {
		kind, payload, err := DecodeEvent(EncodeEvent(NewLoadSignal(host.SignalPrimary)))
		if err != nil {
			t.Fatalf("DecodeEvent() error = %v", err)
		}
		if kind != EventLoadSignal {
			t.Errorf("Kind = %v, want EventLoadSignal", kind)
		}
		ls, ok := payload.(*LoadSignal)
		if !ok || ls.HostSignal() != host.SignalPrimary {
			t.Errorf("payload = %+v, want primary load signal", payload)
		}
	})
}

// TestAllDecodePathsProtected documents the decode paths and their protections.
func TestAllDecodePathsProtected(t *testing.T) {
	t.Run("decoder primitives", func(t *testing.T) {
		// ReadString - protected by DefaultMaxAllocation
		// ReadLenBytes - protected by DefaultMaxAllocation
		// ReadCollectionCount - protected by MaxCollectionCount

		if DefaultMaxAllocation <= 0 {
			t.Error("DefaultMaxAllocation not set")
		}
		if MaxCollectionCount <= 0 {
			t.Error("MaxCollectionCount not set")
		}
	})

	t.Run("field limits", func(t *testing.T) {
		// Message decoders bound each field below the blanket allocation
		// limit, so a single hostile message cannot pin megabytes.

		if MaxSelectorLen >= DefaultMaxAllocation {
			t.Error("MaxSelectorLen should be below DefaultMaxAllocation")
		}
		if MaxValueLen >= DefaultMaxAllocation {
			t.Error("MaxValueLen should be below DefaultMaxAllocation")
		}
		if MaxSnapshotLen >= DefaultMaxAllocation {
			t.Error("MaxSnapshotLen should be below DefaultMaxAllocation")
		}
		if MaxURLLen >= DefaultMaxAllocation {
			t.Error("MaxURLLen should be below DefaultMaxAllocation")
		}
		if MaxQueryResults > MaxCollectionCount {
			t.Error("MaxQueryResults should not exceed MaxCollectionCount")
		}
	})

	t.Run("frame layer", func(t *testing.T) {
		// ReadFrame - bounded by MaxPayloadSize before allocating
		// DecodeFrame - bounded by the 2-byte wire length

		if MaxPayloadSize <= 0 || MaxPayloadSize > 65535 {
			t.Error("MaxPayloadSize out of range for 2-byte length")
		}
	})
}

// =============================================================================
// Helper Functions
// =============================================================================

// makeOversizedStringPayload creates a payload with a string length exceeding the limit.
func makeOversizedStringPayload(size uint64) []byte {
	e := NewEncoder()
	e.WriteUvarint(size) // Length prefix claiming a huge string
	return e.Bytes()
}

// makeOversizedCollectionPayload creates a payload with a collection count exceeding the limit.
func makeOversizedCollectionPayload(count uint64) []byte {
	e := NewEncoder()
	e.WriteUvarint(count) // Collection count
	return e.Bytes()
}
