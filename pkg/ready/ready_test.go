package ready

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mote-dev/mote/pkg/dispatch"
	"github.com/mote-dev/mote/pkg/host"
)

type stubNode struct{}

func (n *stubNode) SameAs(other host.Node) bool {
	o, ok := other.(*stubNode)
	return ok && o == n
}

// stubEnv is a host whose load signals and layout probe the test drives
// by hand.
type stubEnv struct {
	mu    sync.Mutex
	state host.ReadyState

	signalsOK bool
	regs      map[host.LoadSignal][]func()
	removed   int

	// ProbeLayout succeeds from the readyAfter-th call on; zero means
	// never.
	readyAfter int
	probeCalls int

	root, body *stubNode
}

func newStubEnv(state host.ReadyState) *stubEnv {
	return &stubEnv{
		state: state,
		regs:  make(map[host.LoadSignal][]func()),
		root:  &stubNode{},
		body:  &stubNode{},
	}
}

func (e *stubEnv) Root() host.Node                          { return e.root }
func (e *stubEnv) Body() host.Node                          { return e.body }
func (e *stubEnv) Attr(n host.Node, name string) string     { return "" }
func (e *stubEnv) SetAttr(n host.Node, name, value string)  {}
func (e *stubEnv) Bubbles(event string) bool                { return true }

func (e *stubEnv) QueryAll(root host.Node, selector string) ([]host.Node, error) {
	return nil, host.ErrUnsupported
}

func (e *stubEnv) Match(n host.Node, selector string) (bool, error) {
	return false, host.ErrUnsupported
}

func (e *stubEnv) Listen(n host.Node, event string, fn func(host.Event)) (func(), error) {
	return func() {}, nil
}

func (e *stubEnv) ReadyState() host.ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *stubEnv) OnLoadSignal(sig host.LoadSignal, fn func()) (func(), error) {
	if !e.signalsOK {
		return nil, host.ErrUnsupported
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.regs[sig] = append(e.regs[sig], fn)
	idx := len(e.regs[sig]) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.regs[sig][idx] != nil {
			e.regs[sig][idx] = nil
			e.removed++
		}
	}, nil
}

func (e *stubEnv) ProbeLayout() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.probeCalls++
	if e.readyAfter == 0 || e.probeCalls < e.readyAfter {
		return host.ErrNotReady
	}
	return nil
}

func (e *stubEnv) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// fireSignal delivers a load signal to every live registration.
func (e *stubEnv) fireSignal(sig host.LoadSignal) {
	e.mu.Lock()
	fns := append([]func(){}, e.regs[sig]...)
	e.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

func (e *stubEnv) removedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}

func startQueue(t *testing.T) *dispatch.Queue {
	t.Helper()
	q := dispatch.NewQueue(slog.Default())
	go q.Run()
	t.Cleanup(q.Close)
	return q
}

func syncQueue(t *testing.T, q *dispatch.Queue) {
	t.Helper()
	done := make(chan struct{})
	q.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain in time")
	}
}

// waitFired blocks until the latch fires or the test deadline passes.
func waitFired(t *testing.T, d *Dispatcher) {
	t.Helper()
	fired := make(chan struct{})
	d.OnReady(func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("latch never fired")
	}
}

func TestAlreadyCompleteFiresSync(t *testing.T) {
	env := newStubEnv(host.ReadyComplete)
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{ModernEvents: true}, q, nil)

	ran := 0
	d.OnReady(func() { ran++ })
	d.Arm()
	syncQueue(t, q)

	if ran != 1 {
		t.Fatalf("listener ran %d times, want 1", ran)
	}
	if !d.Fired() {
		t.Error("Fired() = false after sync fire")
	}
	if d.Source() != SourceSync {
		t.Errorf("Source() = %v, want sync", d.Source())
	}
}

func TestPrimarySignalFires(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	ran := 0
	d.OnReady(func() { ran++ })
	d.Arm()
	syncQueue(t, q)

	if d.Fired() {
		t.Fatal("latch fired before any signal")
	}

	env.fireSignal(host.SignalPrimary)
	syncQueue(t, q)

	if ran != 1 {
		t.Fatalf("listener ran %d times, want 1", ran)
	}
	if d.Source() != SourcePrimary {
		t.Errorf("Source() = %v, want primary", d.Source())
	}
}

func TestFailsafeSignalFires(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	d.Arm()
	syncQueue(t, q)
	env.fireSignal(host.SignalFailsafe)
	waitFired(t, d)

	if d.Source() != SourceFailsafe {
		t.Errorf("Source() = %v, want failsafe", d.Source())
	}
}

func TestFirstSourceWins(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	ran := 0
	d.OnReady(func() { ran++ })
	d.Arm()
	syncQueue(t, q)

	env.fireSignal(host.SignalPrimary)
	syncQueue(t, q)
	env.fireSignal(host.SignalFailsafe)
	env.fireSignal(host.SignalPrimary)
	syncQueue(t, q)

	if ran != 1 {
		t.Fatalf("listener ran %d times, want exactly 1", ran)
	}
	if d.Source() != SourcePrimary {
		t.Errorf("Source() = %v, want primary", d.Source())
	}
	if env.removedCount() == 0 {
		t.Error("losing signal registrations were not cancelled")
	}
}

func TestLateRegistrationRuns(t *testing.T) {
	env := newStubEnv(host.ReadyComplete)
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{ModernEvents: true}, q, nil)

	d.Arm()
	syncQueue(t, q)

	ran := 0
	d.OnReady(func() { ran++ })
	syncQueue(t, q)

	if ran != 1 {
		t.Fatalf("late listener ran %d times, want 1", ran)
	}
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		d.OnReady(func() { got = append(got, i) })
	}
	d.Arm()
	syncQueue(t, q)
	env.fireSignal(host.SignalPrimary)
	syncQueue(t, q)

	if len(got) != 5 {
		t.Fatalf("ran %d listeners, want 5", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: got %d", i, v)
		}
	}
}

func TestListenerPanicDoesNotBlockOthers(t *testing.T) {
	env := newStubEnv(host.ReadyComplete)
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{ModernEvents: true}, q, nil)

	ran := false
	d.OnReady(func() { panic("boom") })
	d.OnReady(func() { ran = true })
	d.Arm()
	syncQueue(t, q)

	if !ran {
		t.Error("listener after panicking one did not run")
	}
}

func TestPollDetectsLayoutReady(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.readyAfter = 3
	q := startQueue(t)
	caps := host.Capabilities{LayoutProbe: true}
	d := NewDispatcher(env, caps, q, nil,
		WithPollInterval(2*time.Millisecond), WithTimeout(0))

	d.Arm()
	waitFired(t, d)

	if d.Source() != SourcePoll {
		t.Errorf("Source() = %v, want poll", d.Source())
	}
}

func TestPollSkippedWithModernEvents(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.readyAfter = 1
	q := startQueue(t)
	caps := host.Capabilities{LayoutProbe: true, ModernEvents: true}
	d := NewDispatcher(env, caps, q, nil, WithTimeout(0))

	d.Arm()
	syncQueue(t, q)

	if env.probeCalls != 0 {
		t.Errorf("layout probed %d times on a modern host, want 0", env.probeCalls)
	}
	if d.Fired() {
		t.Error("latch fired with no source armed")
	}
}

func TestTimeoutFiresWhenSignalsSilent(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil,
		WithTimeout(5*time.Millisecond))

	d.Arm()
	waitFired(t, d)

	if d.Source() != SourceTimeout {
		t.Errorf("Source() = %v, want timeout", d.Source())
	}
}

func TestArmTwiceIsNoOp(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	d.Arm()
	d.Arm()
	syncQueue(t, q)

	env.mu.Lock()
	regs := len(env.regs[host.SignalPrimary])
	env.mu.Unlock()
	if regs != 1 {
		t.Errorf("primary signal registered %d times, want 1", regs)
	}
}

func TestSourceString(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{SourceSync, "sync"},
		{SourcePrimary, "primary"},
		{SourceFailsafe, "failsafe"},
		{SourcePoll, "poll"},
		{SourceTimeout, "timeout"},
		{Source(0), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestSourceZeroWhilePending(t *testing.T) {
	env := newStubEnv(host.ReadyLoading)
	env.signalsOK = true
	q := startQueue(t)
	d := NewDispatcher(env, host.Capabilities{LoadSignals: true, ModernEvents: true}, q, nil)

	d.Arm()
	syncQueue(t, q)

	if got := d.Source(); got != 0 {
		t.Errorf("Source() = %v while pending, want 0", got)
	}
}
