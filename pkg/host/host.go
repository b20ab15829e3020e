package host

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by Env methods the host does not implement.
var ErrUnsupported = errors.New("host: operation unsupported")

// ErrNotReady is returned by ProbeLayout while the document layout is not
// yet usable.
var ErrNotReady = errors.New("host: layout not ready")

// Node is an opaque handle to a single element owned by the host
// document. Handles are only meaningful to the Env that produced them.
type Node interface {
	// SameAs reports whether the other handle refers to the same element.
	SameAs(Node) bool
}

// Event is a host event delivered to a listener.
type Event interface {
	// Type returns the event name, e.g. "click".
	Type() string
	// Target returns the element the event originated on.
	Target() Node
}

// ReadyState is the host-reported document load-completion status.
type ReadyState uint8

const (
	ReadyLoading     ReadyState = iota // document still loading
	ReadyInteractive                   // tree parsed, subresources pending
	ReadyComplete                      // fully loaded
)

// String returns the string representation of the ready state.
func (rs ReadyState) String() string {
	switch rs {
	case ReadyLoading:
		return "loading"
	case ReadyInteractive:
		return "interactive"
	case ReadyComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// LoadSignal identifies one of the host's document-completion signals.
type LoadSignal uint8

const (
	// SignalPrimary is the host's main completion signal, delivered when
	// the document tree is usable.
	SignalPrimary LoadSignal = iota
	// SignalFailsafe is the late completion signal, delivered when the
	// document has fully loaded. It covers environments where the primary
	// signal can be missed.
	SignalFailsafe
)

// String returns the string representation of the load signal.
func (s LoadSignal) String() string {
	switch s {
	case SignalPrimary:
		return "primary"
	case SignalFailsafe:
		return "failsafe"
	default:
		return "unknown"
	}
}

// Env is the set of host primitives mote consumes. All tree access,
// attribute storage, selector matching, event registration, load-state
// reporting, and timing goes through here; none of it is reimplemented by
// the library.
type Env interface {
	// Root returns the document root element.
	Root() Node
	// Body returns the document body, the default delegation container.
	Body() Node

	// Attr returns the value of the named attribute, or "" when unset.
	Attr(n Node, name string) string
	// SetAttr sets the named attribute.
	SetAttr(n Node, name, value string)

	// QueryAll returns all descendants of root matching the selector.
	// Hosts without a native selector engine return ErrUnsupported.
	QueryAll(root Node, selector string) ([]Node, error)
	// Match reports whether n matches the selector. Hosts without a
	// native single-node test return ErrUnsupported.
	Match(n Node, selector string) (bool, error)

	// Listen registers fn for the named event on n and returns a function
	// that removes the registration. fn runs on whatever goroutine the
	// host delivers events on; callers needing the dispatch goroutine
	// marshal there themselves.
	Listen(n Node, event string, fn func(Event)) (func(), error)
	// Bubbles reports whether the named event propagates to ancestors in
	// this host.
	Bubbles(event string) bool

	// ReadyState returns the current document load state.
	ReadyState() ReadyState
	// OnLoadSignal registers fn for a document completion signal and
	// returns a cancel function. Hosts without load signals return
	// ErrUnsupported.
	OnLoadSignal(sig LoadSignal, fn func()) (func(), error)
	// ProbeLayout is the layout readiness sentinel: nil once layout is
	// usable, ErrNotReady before that, ErrUnsupported when the host has
	// no such probe.
	ProbeLayout() error

	// After runs fn once d has elapsed and returns a cancel function.
	// fn fires on an unspecified goroutine.
	After(d time.Duration, fn func()) (cancel func())
}

// StyleProber is implemented by hosts that support the legacy selector
// strategy: installing a throwaway style rule and reading computed style
// off candidate elements.
type StyleProber interface {
	// InstallProbeRule adds a style rule `selector { prop: value }` and
	// returns a function that removes it.
	InstallProbeRule(selector, prop, value string) (remove func(), err error)
	// ComputedStyle returns the computed value of prop on n.
	ComputedStyle(n Node, prop string) (string, error)
	// WalkElements visits every element under root in document order
	// until fn returns false.
	WalkElements(root Node, fn func(Node) bool)
}

// FrameScheduler is implemented by hosts with a native animation-frame
// callback. Documents fall back to a timer at the nominal frame rate when
// the host does not implement it.
type FrameScheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// LegacyEventer marks hosts whose event registration lacks modern
// capture/bubble semantics. Hosts that do not implement it are treated as
// modern.
type LegacyEventer interface {
	LegacyEvents() bool
}

// CapabilityReporter is implemented by hosts that already know their
// capability set, such as a remote host that received it in a handshake.
// Probe uses the reported set verbatim.
type CapabilityReporter interface {
	ReportCapabilities() Capabilities
}
