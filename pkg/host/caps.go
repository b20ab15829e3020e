package host

import "errors"

// probeSelector is the selector used to test native engine support. Every
// conforming engine accepts the universal selector.
const probeSelector = "*"

// Capabilities records which host primitives are available. It is
// computed once per document and injected into the components that choose
// strategies from it; it is never re-checked afterwards.
type Capabilities struct {
	NativeQuery  bool // host answers subtree selector queries
	NativeMatch  bool // host answers single-node selector tests
	LoadSignals  bool // host delivers document load signals
	ModernEvents bool // event registration has modern capture/bubble semantics
	StyleProbe   bool // host supports style-rule probing and computed style
	LayoutProbe  bool // host exposes the layout readiness sentinel
	FrameTicks   bool // host has a native animation-frame callback
}

// Probe determines the capability set of env. Hosts implementing
// CapabilityReporter are trusted verbatim; otherwise each primitive is
// tried once. Call it once per document, at construction.
func Probe(env Env) Capabilities {
	if r, ok := env.(CapabilityReporter); ok {
		return r.ReportCapabilities()
	}

	var caps Capabilities

	root := env.Root()
	if _, err := env.QueryAll(root, probeSelector); err == nil {
		caps.NativeQuery = true
	}
	if _, err := env.Match(root, probeSelector); err == nil {
		caps.NativeMatch = true
	}

	if cancel, err := env.OnLoadSignal(SignalPrimary, func() {}); err == nil {
		if cancel != nil {
			cancel()
		}
		caps.LoadSignals = true
	}

	caps.ModernEvents = true
	if le, ok := env.(LegacyEventer); ok && le.LegacyEvents() {
		caps.ModernEvents = false
	}

	if _, ok := env.(StyleProber); ok {
		caps.StyleProbe = true
	}
	if err := env.ProbeLayout(); !errors.Is(err, ErrUnsupported) {
		caps.LayoutProbe = true
	}
	if _, ok := env.(FrameScheduler); ok {
		caps.FrameTicks = true
	}

	return caps
}
