package dom

import (
	"log/slog"
	"time"

	"github.com/mote-dev/mote/pkg/dispatch"
	"github.com/mote-dev/mote/pkg/events"
	"github.com/mote-dev/mote/pkg/fetch"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/ready"
	"github.com/mote-dev/mote/pkg/selector"
)

// frameFallback is the timer period standing in for native frame
// callbacks, the nominal 60Hz tick.
const frameFallback = 16 * time.Millisecond

type options struct {
	logger    *slog.Logger
	transport fetch.Transport
	queue     *dispatch.Queue
	ready     []ready.Option
}

// Option customizes a Document.
type Option func(*options)

// WithLogger sets the logger shared by every component of the document.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport sets the transport Request sends through. Without one,
// every request fails over to its OnFailure callback.
func WithTransport(t fetch.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithQueue makes the document share a caller-owned dispatch queue
// instead of creating its own. The caller keeps responsibility for
// running and closing it.
func WithQueue(q *dispatch.Queue) Option {
	return func(o *options) { o.queue = q }
}

// WithReadyOptions forwards options to the readiness dispatcher.
func WithReadyOptions(opts ...ready.Option) Option {
	return func(o *options) { o.ready = append(o.ready, opts...) }
}

// Document is the working surface over one host environment. It probes
// the host's capabilities once at construction, binds every strategy
// choice to that snapshot, and funnels all callbacks through a single
// dispatch goroutine.
type Document struct {
	env       host.Env
	caps      host.Capabilities
	queue     *dispatch.Queue
	ownsQueue bool
	engine    *selector.Engine
	readyd    *ready.Dispatcher
	deleg     *events.Delegator
	client    *fetch.Client
	logger    *slog.Logger
}

// New builds a document over env and arms its readiness detection. When
// no queue is supplied the document creates and runs its own.
func New(env host.Env, opts ...Option) *Document {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	caps := host.Probe(env)
	queue := o.queue
	owns := false
	if queue == nil {
		queue = dispatch.NewQueue(o.logger)
		go queue.Run()
		owns = true
	}

	engine := selector.NewEngine(env, caps, o.logger)
	d := &Document{
		env:       env,
		caps:      caps,
		queue:     queue,
		ownsQueue: owns,
		engine:    engine,
		readyd:    ready.NewDispatcher(env, caps, queue, o.logger, o.ready...),
		deleg:     events.NewDelegator(env, engine, o.logger),
		client:    fetch.NewClient(o.transport, queue, o.logger),
		logger:    o.logger,
	}

	d.logger.Debug("document constructed",
		"strategy", engine.Strategy(), "modern_events", caps.ModernEvents)
	d.readyd.Arm()
	return d
}

// Capabilities returns the capability snapshot taken at construction.
func (d *Document) Capabilities() host.Capabilities { return d.caps }

// Strategy returns the selector strategy the document is bound to.
func (d *Document) Strategy() selector.Strategy { return d.engine.Strategy() }

// Ready runs fn once the document is ready, on the dispatch goroutine.
// Listeners registered after readiness run on the next queue turn.
func (d *Document) Ready(fn func()) {
	d.readyd.OnReady(fn)
}

// QueryAll returns all elements matching sel, in document order.
func (d *Document) QueryAll(sel string) []host.Node {
	return d.engine.QueryAll(sel, nil)
}

// Query returns the first element matching sel, or nil.
func (d *Document) Query(sel string) host.Node {
	nodes := d.engine.QueryAll(sel, nil)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Matches reports whether n matches sel.
func (d *Document) Matches(n host.Node, sel string) bool {
	return d.engine.Matches(n, sel)
}

// On binds fn to the named event on n. fn runs on the dispatch
// goroutine.
func (d *Document) On(n host.Node, event string, fn func(host.Event)) (*events.Handle, error) {
	return events.On(d.env, n, event, func(ev host.Event) {
		d.queue.Post(func() { fn(ev) })
	})
}

// Delegate runs fn whenever the named event originates on an element
// under container matching sel. A nil container delegates from the body.
// fn runs on the dispatch goroutine with the matched element as an
// explicit argument.
func (d *Document) Delegate(sel, event string, fn events.DelegateListener, container host.Node) (*events.Handle, error) {
	return d.deleg.Delegate(sel, event, func(m host.Node, ev host.Event) {
		d.queue.Post(func() { fn(m, ev) })
	}, container)
}

// Request issues the HTTP exchange described by cfg. Its callbacks run
// on the dispatch goroutine.
func (d *Document) Request(cfg fetch.Config) {
	d.client.Request(cfg)
}

// RequestFrame schedules fn for the host's next animation frame, or for
// a timer at the nominal frame rate when the host has no native frame
// callback. fn runs on the dispatch goroutine.
func (d *Document) RequestFrame(fn func()) (cancel func()) {
	run := func() { d.queue.Post(fn) }
	if d.caps.FrameTicks {
		if fs, ok := d.env.(host.FrameScheduler); ok {
			return fs.RequestFrame(run)
		}
	}
	return d.env.After(frameFallback, run)
}

// Post runs fn on the dispatch goroutine.
func (d *Document) Post(fn func()) {
	d.queue.Post(fn)
}

// Do runs fn on the dispatch goroutine and waits for it to finish. It
// returns early if the queue shuts down first. Calling Do from the
// dispatch goroutine itself would deadlock; use Post there.
func (d *Document) Do(fn func()) {
	done := make(chan struct{})
	d.queue.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-d.queue.Done():
	}
}

// Close releases the document. A queue the document created is closed
// and drained; a caller-supplied queue is left running.
func (d *Document) Close() {
	if d.ownsQueue {
		d.queue.Close()
	}
}
