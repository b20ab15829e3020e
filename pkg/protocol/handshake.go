package protocol

import (
	"strconv"

	"github.com/mote-dev/mote/pkg/host"
)

// HandshakeStatus represents the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeSessionExpired  HandshakeStatus = 0x02
	HandshakeInvalidFormat   HandshakeStatus = 0x03
	HandshakeServerBusy      HandshakeStatus = 0x04
	HandshakeInternalError   HandshakeStatus = 0x05
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeSessionExpired:
		return "SessionExpired"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion identifies the protocol version.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the protocol version implemented by this package.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

// String returns the version as "major.minor".
func (v ProtocolVersion) String() string {
	return strconv.Itoa(int(v.Major)) + "." + strconv.Itoa(int(v.Minor))
}

// Compatible returns true if the versions can interoperate.
// Versions are compatible when the major version matches.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// CapBits encodes a document capability report as a bitfield. The client
// probes its document once at startup and declares the result in its hello;
// the bridge reconstructs host.Capabilities from the bits and never probes
// over the wire.
type CapBits uint16

const (
	CapNativeQuery  CapBits = 1 << 0 // answers subtree selector queries
	CapNativeMatch  CapBits = 1 << 1 // answers single-node selector tests
	CapLoadSignals  CapBits = 1 << 2 // delivers document load signals
	CapModernEvents CapBits = 1 << 3 // modern event registration semantics
	CapStyleProbe   CapBits = 1 << 4 // style-rule probing and computed style
	CapLayoutProbe  CapBits = 1 << 5 // layout readiness sentinel
	CapFrameTicks   CapBits = 1 << 6 // native animation-frame callback
)

// Has returns true if the bits contain the specified capability.
func (b CapBits) Has(bit CapBits) bool {
	return b&bit != 0
}

// Capabilities expands the bitfield into a host capability report.
func (b CapBits) Capabilities() host.Capabilities {
	return host.Capabilities{
		NativeQuery:  b.Has(CapNativeQuery),
		NativeMatch:  b.Has(CapNativeMatch),
		LoadSignals:  b.Has(CapLoadSignals),
		ModernEvents: b.Has(CapModernEvents),
		StyleProbe:   b.Has(CapStyleProbe),
		LayoutProbe:  b.Has(CapLayoutProbe),
		FrameTicks:   b.Has(CapFrameTicks),
	}
}

// EncodeCaps packs a host capability report into wire bits.
func EncodeCaps(caps host.Capabilities) CapBits {
	var b CapBits
	if caps.NativeQuery {
		b |= CapNativeQuery
	}
	if caps.NativeMatch {
		b |= CapNativeMatch
	}
	if caps.LoadSignals {
		b |= CapLoadSignals
	}
	if caps.ModernEvents {
		b |= CapModernEvents
	}
	if caps.StyleProbe {
		b |= CapStyleProbe
	}
	if caps.LayoutProbe {
		b |= CapLayoutProbe
	}
	if caps.FrameTicks {
		b |= CapFrameTicks
	}
	return b
}

// ClientHello is sent by the client to initiate a session.
type ClientHello struct {
	Version    ProtocolVersion // Protocol version
	SessionID  string          // Session to resume (empty for new session)
	PageURL    string          // URL of the hosting page
	ReadyState uint8           // Document ready state at connect time
	Caps       CapBits         // Document capability report
	ViewportW  uint16          // Viewport width in pixels
	ViewportH  uint16          // Viewport height in pixels
}

// Capabilities expands the hello's capability bits.
func (h *ClientHello) Capabilities() host.Capabilities {
	return h.Caps.Capabilities()
}

// DocumentState returns the hello's ready state as a host ready state.
func (h *ClientHello) DocumentState() host.ReadyState {
	return host.ReadyState(h.ReadyState)
}

// EncodeClientHello encodes a ClientHello to bytes.
func EncodeClientHello(h *ClientHello) []byte {
	e := NewEncoder()
	EncodeClientHelloTo(e, h)
	return e.Bytes()
}

// EncodeClientHelloTo encodes a ClientHello using the provided encoder.
func EncodeClientHelloTo(e *Encoder, h *ClientHello) {
	e.WriteByte(h.Version.Major)
	e.WriteByte(h.Version.Minor)
	e.WriteString(h.SessionID)
	e.WriteString(h.PageURL)
	e.WriteByte(h.ReadyState)
	e.WriteUint16(uint16(h.Caps))
	e.WriteUint16(h.ViewportW)
	e.WriteUint16(h.ViewportH)
}

// DecodeClientHello decodes a ClientHello from bytes.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	return DecodeClientHelloFrom(d)
}

// DecodeClientHelloFrom decodes a ClientHello from a decoder.
func DecodeClientHelloFrom(d *Decoder) (*ClientHello, error) {
	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(sessionID), MaxSessionIDLen); err != nil {
		return nil, err
	}

	pageURL, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(pageURL), MaxURLLen); err != nil {
		return nil, err
	}

	readyState, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	caps, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	viewportW, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	viewportH, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	return &ClientHello{
		Version:    ProtocolVersion{Major: major, Minor: minor},
		SessionID:  sessionID,
		PageURL:    pageURL,
		ReadyState: readyState,
		Caps:       CapBits(caps),
		ViewportW:  viewportW,
		ViewportH:  viewportH,
	}, nil
}

// Server capability flags announced in the ServerHello.
const (
	ServerFlagResumed uint16 = 0x0001 // Session was resumed; registrations survive
	ServerFlagDebug   uint16 = 0x0002 // Client should log verbosely
)

// ServerHello is the server's response to a ClientHello.
type ServerHello struct {
	Status     HandshakeStatus // Handshake result
	SessionID  string          // Assigned or resumed session ID
	ServerTime uint64          // Server time (Unix milliseconds)
	Flags      uint16          // Server capability flags
}

// EncodeServerHello encodes a ServerHello to bytes.
func EncodeServerHello(h *ServerHello) []byte {
	e := NewEncoder()
	EncodeServerHelloTo(e, h)
	return e.Bytes()
}

// EncodeServerHelloTo encodes a ServerHello using the provided encoder.
func EncodeServerHelloTo(e *Encoder, h *ServerHello) {
	e.WriteByte(byte(h.Status))
	e.WriteString(h.SessionID)
	e.WriteUint64(h.ServerTime)
	e.WriteUint16(h.Flags)
}

// DecodeServerHello decodes a ServerHello from bytes.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	return DecodeServerHelloFrom(d)
}

// DecodeServerHelloFrom decodes a ServerHello from a decoder.
func DecodeServerHelloFrom(d *Decoder) (*ServerHello, error) {
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	sessionID, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := checkFieldLen(len(sessionID), MaxSessionIDLen); err != nil {
		return nil, err
	}

	serverTime, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}

	flags, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}

	return &ServerHello{
		Status:     HandshakeStatus(status),
		SessionID:  sessionID,
		ServerTime: serverTime,
		Flags:      flags,
	}, nil
}

// NewClientHello creates a ClientHello with the current protocol version.
func NewClientHello(pageURL string, state host.ReadyState, caps host.Capabilities, viewportW, viewportH uint16) *ClientHello {
	return &ClientHello{
		Version:    CurrentVersion,
		PageURL:    pageURL,
		ReadyState: uint8(state),
		Caps:       EncodeCaps(caps),
		ViewportW:  viewportW,
		ViewportH:  viewportH,
	}
}

// NewServerHello creates a successful ServerHello.
func NewServerHello(sessionID string, serverTime uint64, flags uint16) *ServerHello {
	return &ServerHello{
		Status:     HandshakeOK,
		SessionID:  sessionID,
		ServerTime: serverTime,
		Flags:      flags,
	}
}

// NewServerHelloError creates a ServerHello indicating a handshake failure.
func NewServerHelloError(status HandshakeStatus) *ServerHello {
	return &ServerHello{
		Status: status,
	}
}
