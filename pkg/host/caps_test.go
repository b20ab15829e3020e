package host

import (
	"testing"
	"time"
)

type stubNode struct{ id int }

func (n *stubNode) SameAs(other Node) bool {
	o, ok := other.(*stubNode)
	return ok && o == n
}

// stubEnv is a minimal Env with switchable primitives.
type stubEnv struct {
	root, body *stubNode

	query   bool
	match   bool
	signals bool
	layout  bool

	queryCalls  int
	matchCalls  int
	signalCalls int
	layoutCalls int
}

func newStubEnv() *stubEnv {
	return &stubEnv{root: &stubNode{id: 0}, body: &stubNode{id: 1}}
}

func (e *stubEnv) Root() Node { return e.root }
func (e *stubEnv) Body() Node { return e.body }

func (e *stubEnv) Attr(n Node, name string) string     { return "" }
func (e *stubEnv) SetAttr(n Node, name, value string)  {}
func (e *stubEnv) Bubbles(event string) bool           { return true }
func (e *stubEnv) ReadyState() ReadyState              { return ReadyLoading }
func (e *stubEnv) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

func (e *stubEnv) QueryAll(root Node, selector string) ([]Node, error) {
	e.queryCalls++
	if !e.query {
		return nil, ErrUnsupported
	}
	return nil, nil
}

func (e *stubEnv) Match(n Node, selector string) (bool, error) {
	e.matchCalls++
	if !e.match {
		return false, ErrUnsupported
	}
	return false, nil
}

func (e *stubEnv) Listen(n Node, event string, fn func(Event)) (func(), error) {
	return func() {}, nil
}

func (e *stubEnv) OnLoadSignal(sig LoadSignal, fn func()) (func(), error) {
	e.signalCalls++
	if !e.signals {
		return nil, ErrUnsupported
	}
	return func() {}, nil
}

func (e *stubEnv) ProbeLayout() error {
	e.layoutCalls++
	if !e.layout {
		return ErrUnsupported
	}
	return ErrNotReady
}

// legacyStubEnv opts out of modern event semantics.
type legacyStubEnv struct{ *stubEnv }

func (e *legacyStubEnv) LegacyEvents() bool { return true }

// reporterStubEnv short-circuits probing with a known capability set.
type reporterStubEnv struct {
	*stubEnv
	caps Capabilities
}

func (e *reporterStubEnv) ReportCapabilities() Capabilities { return e.caps }

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		env  func() Env
		want Capabilities
	}{
		{
			name: "bare_host",
			env:  func() Env { return newStubEnv() },
			want: Capabilities{ModernEvents: true},
		},
		{
			name: "full_native",
			env: func() Env {
				e := newStubEnv()
				e.query, e.match, e.signals, e.layout = true, true, true, true
				return e
			},
			want: Capabilities{
				NativeQuery:  true,
				NativeMatch:  true,
				LoadSignals:  true,
				ModernEvents: true,
				LayoutProbe:  true,
			},
		},
		{
			name: "query_without_match",
			env: func() Env {
				e := newStubEnv()
				e.query = true
				return e
			},
			want: Capabilities{NativeQuery: true, ModernEvents: true},
		},
		{
			name: "legacy_events",
			env: func() Env {
				e := newStubEnv()
				e.layout = true
				return &legacyStubEnv{e}
			},
			want: Capabilities{LayoutProbe: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Probe(tt.env())
			if got != tt.want {
				t.Errorf("Probe() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProbeUsesReportedCapabilities(t *testing.T) {
	want := Capabilities{NativeQuery: true, ModernEvents: true, FrameTicks: true}
	env := &reporterStubEnv{stubEnv: newStubEnv(), caps: want}

	got := Probe(env)
	if got != want {
		t.Errorf("Probe() = %+v, want reported %+v", got, want)
	}
	if env.queryCalls != 0 || env.matchCalls != 0 || env.signalCalls != 0 || env.layoutCalls != 0 {
		t.Errorf("Probe touched primitives on a reporting host: %+v", env.stubEnv)
	}
}

func TestProbeTouchesEachPrimitiveOnce(t *testing.T) {
	env := newStubEnv()
	env.query, env.match, env.signals, env.layout = true, true, true, true

	Probe(env)

	if env.queryCalls != 1 {
		t.Errorf("QueryAll probed %d times, want 1", env.queryCalls)
	}
	if env.matchCalls != 1 {
		t.Errorf("Match probed %d times, want 1", env.matchCalls)
	}
	if env.signalCalls != 1 {
		t.Errorf("OnLoadSignal probed %d times, want 1", env.signalCalls)
	}
	if env.layoutCalls != 1 {
		t.Errorf("ProbeLayout probed %d times, want 1", env.layoutCalls)
	}
}

func TestReadyStateString(t *testing.T) {
	tests := []struct {
		rs   ReadyState
		want string
	}{
		{ReadyLoading, "loading"},
		{ReadyInteractive, "interactive"},
		{ReadyComplete, "complete"},
		{ReadyState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.rs.String(); got != tt.want {
			t.Errorf("ReadyState(%d).String() = %q, want %q", tt.rs, got, tt.want)
		}
	}
}

func TestLoadSignalString(t *testing.T) {
	tests := []struct {
		sig  LoadSignal
		want string
	}{
		{SignalPrimary, "primary"},
		{SignalFailsafe, "failsafe"},
		{LoadSignal(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.sig.String(); got != tt.want {
			t.Errorf("LoadSignal(%d).String() = %q, want %q", tt.sig, got, tt.want)
		}
	}
}
