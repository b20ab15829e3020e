package events

import (
	"log/slog"
	"sync/atomic"

	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/selector"
)

// Handle undoes one event registration. The zero value is inert.
type Handle struct {
	remove  func()
	removed atomic.Bool
}

// Remove detaches the registration. Only the first call has any effect;
// calling it again, or on a nil handle, is a no-op.
func (h *Handle) Remove() {
	if h == nil || h.remove == nil {
		return
	}
	if !h.removed.CompareAndSwap(false, true) {
		return
	}
	h.remove()
}

// On binds fn to the named event on n. fn is delivered on the document's
// dispatch goroutine.
func On(env host.Env, n host.Node, event string, fn func(host.Event)) (*Handle, error) {
	cancel, err := env.Listen(n, event, fn)
	if err != nil {
		return nil, err
	}
	return &Handle{remove: cancel}, nil
}

// DelegateListener receives the element that matched the delegation
// selector together with the originating event. The matched element is
// an explicit parameter: listeners never have to recover it from the
// event themselves.
type DelegateListener func(matched host.Node, ev host.Event)

// Delegator routes events from a container to listeners keyed by
// selector.
type Delegator struct {
	env    host.Env
	engine *selector.Engine
	logger *slog.Logger
}

// NewDelegator builds a delegator answering match tests through engine.
// A nil logger defaults to slog.Default().
func NewDelegator(env host.Env, engine *selector.Engine, logger *slog.Logger) *Delegator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Delegator{env: env, engine: engine, logger: logger}
}

// Delegate runs fn whenever the named event originates on an element
// under container matching sel. A nil container delegates from the
// document body. Elements that start matching sel later are covered
// without rebinding, as long as the event bubbles in this host.
//
// For events the host does not propagate, Delegate falls back to binding
// each currently matching element directly. Elements added or first
// matching after the call are not covered by the fallback.
func (d *Delegator) Delegate(sel, event string, fn DelegateListener, container host.Node) (*Handle, error) {
	if container == nil {
		container = d.env.Body()
	}
	if !d.env.Bubbles(event) {
		return d.delegateDirect(sel, event, fn, container)
	}

	cancel, err := d.env.Listen(container, event, func(ev host.Event) {
		target := ev.Target()
		if target == nil {
			return
		}
		if d.engine.Matches(target, sel) {
			fn(target, ev)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Handle{remove: cancel}, nil
}

// delegateDirect is the non-bubbling fallback: one direct binding per
// element matching sel right now. The handle removes them all.
func (d *Delegator) delegateDirect(sel, event string, fn DelegateListener, container host.Node) (*Handle, error) {
	nodes := d.engine.QueryAll(sel, container)
	cancels := make([]func(), 0, len(nodes))
	for _, n := range nodes {
		n := n
		cancel, err := d.env.Listen(n, event, func(ev host.Event) { fn(n, ev) })
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return nil, err
		}
		cancels = append(cancels, cancel)
	}
	d.logger.Debug("non-bubbling event bound directly",
		"event", event, "selector", sel, "elements", len(nodes))
	return &Handle{remove: func() {
		for _, c := range cancels {
			c()
		}
	}}, nil
}
