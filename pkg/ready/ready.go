package ready

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mote-dev/mote/pkg/dispatch"
	"github.com/mote-dev/mote/pkg/host"
)

const (
	// DefaultPollInterval paces the layout readiness probe on hosts
	// without modern event registration.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultTimeout bounds the wait for a completion signal. A host
	// that never delivers one still fires the latch, late.
	DefaultTimeout = 30 * time.Second
)

// Source identifies which completion source fired the latch.
type Source uint8

const (
	// SourceSync means the document was already complete when the
	// dispatcher was armed.
	SourceSync Source = iota + 1
	// SourcePrimary is the host's main completion signal.
	SourcePrimary
	// SourceFailsafe is the host's late, full-load signal.
	SourceFailsafe
	// SourcePoll is the layout readiness probe.
	SourcePoll
	// SourceTimeout is the deadline fallback.
	SourceTimeout
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceSync:
		return "sync"
	case SourcePrimary:
		return "primary"
	case SourceFailsafe:
		return "failsafe"
	case SourcePoll:
		return "poll"
	case SourceTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithPollInterval sets the interval between layout readiness probes.
func WithPollInterval(d time.Duration) Option {
	return func(rd *Dispatcher) { rd.pollEvery = d }
}

// WithTimeout sets the deadline after which the latch fires regardless
// of signals. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(rd *Dispatcher) { rd.deadline = d }
}

// Dispatcher latches document readiness exactly once and runs listeners
// in registration order. Several redundant completion sources race to
// fire it; the first one wins and the rest are cancelled.
//
// All state is owned by the dispatch goroutine. Public methods post onto
// the queue and are safe from any goroutine.
type Dispatcher struct {
	env    host.Env
	caps   host.Capabilities
	queue  *dispatch.Queue
	logger *slog.Logger

	pollEvery time.Duration
	deadline  time.Duration

	fired  atomic.Bool
	source Source // written once, before fired flips

	// owned by the dispatch goroutine
	armed      bool
	listeners  []func()
	cancels    []func()
	pollCancel func()
}

// NewDispatcher builds a dispatcher over env with the capability set
// caps. A nil logger defaults to slog.Default(). Call Arm to install the
// completion sources.
func NewDispatcher(env host.Env, caps host.Capabilities, queue *dispatch.Queue, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		env:       env,
		caps:      caps,
		queue:     queue,
		logger:    logger,
		pollEvery: DefaultPollInterval,
		deadline:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Arm installs the completion sources. A document that is already
// complete fires the latch on the same queue turn. Arming twice is a
// no-op.
func (d *Dispatcher) Arm() {
	d.queue.Post(d.arm)
}

// OnReady registers fn to run once the document is ready. fn runs on the
// dispatch goroutine; if the latch has already fired it runs on the next
// queue turn. Each listener runs exactly once.
func (d *Dispatcher) OnReady(fn func()) {
	d.queue.Post(func() {
		if d.fired.Load() {
			d.invoke(fn)
			return
		}
		d.listeners = append(d.listeners, fn)
	})
}

// Fired reports whether the latch has fired.
func (d *Dispatcher) Fired() bool {
	return d.fired.Load()
}

// Source returns the source that fired the latch, or zero while the
// latch is pending.
func (d *Dispatcher) Source() Source {
	if !d.fired.Load() {
		return 0
	}
	return d.source
}

func (d *Dispatcher) arm() {
	if d.armed || d.fired.Load() {
		return
	}
	d.armed = true

	if d.env.ReadyState() == host.ReadyComplete {
		d.fire(SourceSync)
		return
	}

	if d.caps.LoadSignals {
		d.armSignal(host.SignalPrimary, SourcePrimary)
		d.armSignal(host.SignalFailsafe, SourceFailsafe)
	}

	// The probe loop covers hosts whose registration can miss the
	// primary signal. Modern registration cannot, so the poll would be
	// pure overhead there.
	if d.caps.LayoutProbe && !d.caps.ModernEvents {
		d.armPoll()
	}

	if d.deadline > 0 {
		cancel := d.env.After(d.deadline, func() {
			d.queue.Post(func() { d.fire(SourceTimeout) })
		})
		d.cancels = append(d.cancels, cancel)
	}
}

func (d *Dispatcher) armSignal(sig host.LoadSignal, src Source) {
	cancel, err := d.env.OnLoadSignal(sig, func() {
		d.queue.Post(func() { d.fire(src) })
	})
	if err != nil {
		d.logger.Debug("load signal unavailable", "signal", sig, "error", err)
		return
	}
	d.cancels = append(d.cancels, cancel)
}

func (d *Dispatcher) armPoll() {
	var tick func()
	tick = func() {
		if d.fired.Load() {
			return
		}
		err := d.env.ProbeLayout()
		switch {
		case err == nil:
			d.fire(SourcePoll)
		case errors.Is(err, host.ErrNotReady):
			d.pollCancel = d.env.After(d.pollEvery, func() {
				d.queue.Post(tick)
			})
		default:
			d.logger.Debug("layout probe failed, polling stopped", "error", err)
		}
	}
	tick()
}

// fire transitions the latch. Only the first source gets through; it
// cancels every other pending source before listeners run.
func (d *Dispatcher) fire(src Source) {
	if d.fired.Load() {
		return
	}
	d.source = src
	d.fired.Store(true)
	d.cancelAll()

	if src == SourceTimeout {
		d.logger.Warn("no completion signal before deadline", "timeout", d.deadline)
	} else {
		d.logger.Debug("document ready", "source", src)
	}

	listeners := d.listeners
	d.listeners = nil
	for _, fn := range listeners {
		d.invoke(fn)
	}
}

// invoke runs one listener, isolating panics so the remaining listeners
// still run.
func (d *Dispatcher) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("ready listener panic", "panic", r)
		}
	}()
	fn()
}

func (d *Dispatcher) cancelAll() {
	for _, cancel := range d.cancels {
		cancel()
	}
	d.cancels = nil
	if d.pollCancel != nil {
		d.pollCancel()
		d.pollCancel = nil
	}
}
