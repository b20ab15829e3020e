package bridge

import (
	"time"

	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/protocol"
)

// === Remote Handles ===

// remoteNode is a host.Node backed by a browser-side node reference. It is
// a comparable value: two handles are the same element exactly when their
// references match, because the browser shim never assigns one element two
// references.
type remoteNode struct {
	ref protocol.NodeRef
}

// SameAs reports whether the other handle refers to the same element.
func (n remoteNode) SameAs(other host.Node) bool {
	o, ok := other.(remoteNode)
	return ok && o.ref == n.ref
}

// remoteEvent is a host.Event relayed from the browser.
type remoteEvent struct {
	typ    string
	target host.Node
}

func (e remoteEvent) Type() string      { return e.typ }
func (e remoteEvent) Target() host.Node { return e.target }

// refOf extracts the wire reference from a handle this session issued.
func refOf(n host.Node) (protocol.NodeRef, bool) {
	rn, ok := n.(remoteNode)
	if !ok {
		return protocol.RefNone, false
	}
	return rn.ref, true
}

// === host.Env ===

// Session implements host.Env by translating each primitive into one op
// round trip. Error-returning methods surface op failures; the two
// void-ish accessors (Attr, SetAttr) log and degrade, matching the
// interface's "unset attribute reads as empty" contract.

// Root returns the handle of the document's root element.
func (s *Session) Root() host.Node { return remoteNode{ref: protocol.RefRoot} }

// Body returns the handle of the document body.
func (s *Session) Body() host.Node { return remoteNode{ref: protocol.RefBody} }

// Attr returns the value of the named attribute, or "" when unset or when
// the read fails.
func (s *Session) Attr(n host.Node, name string) string {
	ref, ok := refOf(n)
	if !ok {
		return ""
	}
	reply, err := s.roundTrip(protocol.NewGetAttrOp(s.nextSeq(), ref, name))
	if err != nil {
		s.logger.Debug("attr read failed", "name", name, "error", err)
		return ""
	}
	if err := s.replyError("GetAttr", reply); err != nil {
		s.logger.Debug("attr read failed", "name", name, "error", err)
		return ""
	}
	return reply.Value
}

// SetAttr sets the named attribute on n.
func (s *Session) SetAttr(n host.Node, name, value string) {
	ref, ok := refOf(n)
	if !ok {
		return
	}
	reply, err := s.roundTrip(protocol.NewSetAttrOp(s.nextSeq(), ref, name, value))
	if err != nil {
		s.logger.Warn("attr write failed", "name", name, "error", err)
		return
	}
	if err := s.replyError("SetAttr", reply); err != nil {
		s.logger.Warn("attr write failed", "name", name, "error", err)
	}
}

// QueryAll returns every descendant of root matching the selector.
func (s *Session) QueryAll(root host.Node, selector string) ([]host.Node, error) {
	if !s.caps.NativeQuery {
		return nil, host.ErrUnsupported
	}
	ref, ok := refOf(root)
	if !ok {
		return nil, ErrUnknownRef
	}
	reply, err := s.roundTrip(protocol.NewQueryOp(s.nextSeq(), ref, selector))
	if err != nil {
		return nil, err
	}
	if err := s.replyError("Query", reply); err != nil {
		return nil, err
	}
	nodes := make([]host.Node, len(reply.Refs))
	for i, r := range reply.Refs {
		nodes[i] = remoteNode{ref: r}
	}
	return nodes, nil
}

// Match reports whether n matches the selector.
func (s *Session) Match(n host.Node, selector string) (bool, error) {
	if !s.caps.NativeMatch {
		return false, host.ErrUnsupported
	}
	ref, ok := refOf(n)
	if !ok {
		return false, ErrUnknownRef
	}
	reply, err := s.roundTrip(protocol.NewMatchOp(s.nextSeq(), ref, selector))
	if err != nil {
		return false, err
	}
	if err := s.replyError("Match", reply); err != nil {
		return false, err
	}
	return reply.Flag, nil
}

// Listen registers fn for the named event on n. The browser assigns the
// listener ID; fired events carry it back and the event loop routes them to
// fn. fn runs on the session's event loop goroutine.
func (s *Session) Listen(n host.Node, event string, fn func(host.Event)) (func(), error) {
	ref, ok := refOf(n)
	if !ok {
		return nil, ErrUnknownRef
	}
	reply, err := s.roundTrip(protocol.NewListenOp(s.nextSeq(), ref, event))
	if err != nil {
		return nil, err
	}
	if err := s.replyError("Listen", reply); err != nil {
		return nil, err
	}

	id := reply.ID
	s.listenerMu.Lock()
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	removed := false
	remove := func() {
		s.listenerMu.Lock()
		if removed {
			s.listenerMu.Unlock()
			return
		}
		removed = true
		delete(s.listeners, id)
		s.listenerMu.Unlock()

		if reply, err := s.roundTrip(protocol.NewUnlistenOp(s.nextSeq(), id)); err != nil {
			s.logger.Debug("unlisten failed", "listener", id, "error", err)
		} else if err := s.replyError("Unlisten", reply); err != nil {
			s.logger.Debug("unlisten failed", "listener", id, "error", err)
		}
	}
	return remove, nil
}

// Bubbles reports whether the named event propagates to ancestors in the
// browser. The table is static: it reflects DOM semantics, not anything the
// page can change.
func (s *Session) Bubbles(event string) bool {
	return !nonBubbling[event]
}

// nonBubbling lists the standard events that do not propagate. scroll is
// listed because element scroll events do not bubble; only the document's
// own scroll reaches the document.
var nonBubbling = map[string]bool{
	"focus":      true,
	"blur":       true,
	"load":       true,
	"unload":     true,
	"error":      true,
	"abort":      true,
	"mouseenter": true,
	"mouseleave": true,
	"scroll":     true,
}

// ReadyState returns the browser's document load state. It reads the local
// cache, seeded at handshake and advanced by state-change events, so it is
// safe to call from dispatch callbacks without stalling them on the wire.
func (s *Session) ReadyState() host.ReadyState {
	return host.ReadyState(s.readyState.Load())
}

// OnLoadSignal registers fn for a document completion signal. Signals
// latch: when the signal already fired, fn runs synchronously before
// OnLoadSignal returns. That covers pages that connect after
// DOMContentLoaded, where the browser reports the latched signal once at
// connect time.
func (s *Session) OnLoadSignal(sig host.LoadSignal, fn func()) (func(), error) {
	if !s.caps.LoadSignals {
		return nil, host.ErrUnsupported
	}

	s.signalMu.Lock()
	if s.fired[sig] {
		s.signalMu.Unlock()
		fn()
		return func() {}, nil
	}
	s.waiterSeq++
	id := s.waiterSeq
	if s.waiters[sig] == nil {
		s.waiters[sig] = make(map[uint64]func())
	}
	s.waiters[sig][id] = fn
	s.signalMu.Unlock()

	cancel := func() {
		s.signalMu.Lock()
		if ws := s.waiters[sig]; ws != nil {
			delete(ws, id)
		}
		s.signalMu.Unlock()
	}
	return cancel, nil
}

// ProbeLayout asks the browser whether layout is usable yet.
func (s *Session) ProbeLayout() error {
	if !s.caps.LayoutProbe {
		return host.ErrUnsupported
	}
	reply, err := s.roundTrip(protocol.NewProbeOp(s.nextSeq()))
	if err != nil {
		return err
	}
	if err := s.replyError("Probe", reply); err != nil {
		return err
	}
	if !reply.Flag {
		return host.ErrNotReady
	}
	return nil
}

// After runs fn once d has elapsed. Timing is server-side; the browser is
// not involved.
func (s *Session) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ReportCapabilities returns the capability set the browser declared at
// handshake. host.Probe uses it verbatim, so constructing a Document on a
// Session does no wire round trips.
func (s *Session) ReportCapabilities() host.Capabilities {
	return s.caps
}

// === host.StyleProber ===

// InstallProbeRule installs `selector { prop: value }` in a bridge-owned
// stylesheet and returns its remover.
func (s *Session) InstallProbeRule(selector, prop, value string) (func(), error) {
	reply, err := s.roundTrip(protocol.NewInstallRuleOp(s.nextSeq(), selector, prop, value))
	if err != nil {
		return nil, err
	}
	if err := s.replyError("InstallRule", reply); err != nil {
		return nil, err
	}

	id := reply.ID
	remove := func() {
		if reply, err := s.roundTrip(protocol.NewRemoveRuleOp(s.nextSeq(), id)); err != nil {
			s.logger.Debug("rule removal failed", "rule", id, "error", err)
		} else if err := s.replyError("RemoveRule", reply); err != nil {
			s.logger.Debug("rule removal failed", "rule", id, "error", err)
		}
	}
	return remove, nil
}

// ComputedStyle returns the computed value of prop on n.
func (s *Session) ComputedStyle(n host.Node, prop string) (string, error) {
	ref, ok := refOf(n)
	if !ok {
		return "", ErrUnknownRef
	}
	reply, err := s.roundTrip(protocol.NewComputedStyleOp(s.nextSeq(), ref, prop))
	if err != nil {
		return "", err
	}
	if err := s.replyError("ComputedStyle", reply); err != nil {
		return "", err
	}
	return reply.Value, nil
}

// WalkElements visits every element under root in document order until fn
// returns false. It materializes the subtree with one universal query; a
// walk that fails to query visits nothing.
func (s *Session) WalkElements(root host.Node, fn func(host.Node) bool) {
	ref, ok := refOf(root)
	if !ok {
		return
	}
	reply, err := s.roundTrip(protocol.NewQueryOp(s.nextSeq(), ref, "*"))
	if err != nil {
		s.logger.Debug("walk query failed", "error", err)
		return
	}
	if err := s.replyError("Query", reply); err != nil {
		s.logger.Debug("walk query failed", "error", err)
		return
	}
	for _, r := range reply.Refs {
		if !fn(remoteNode{ref: r}) {
			return
		}
	}
}

// === Diagnostics ===

// QueryReadyState asks the browser for its current ready state over the
// wire, refreshing the local cache. Intended for diagnostics; ReadyState is
// the call sites' fast path.
func (s *Session) QueryReadyState() (host.ReadyState, error) {
	reply, err := s.roundTrip(protocol.NewReadyStateOp(s.nextSeq()))
	if err != nil {
		return host.ReadyLoading, err
	}
	if err := s.replyError("ReadyState", reply); err != nil {
		return host.ReadyLoading, err
	}
	state := host.ReadyState(reply.State)
	s.readyState.Store(uint32(state))
	return state, nil
}

// CaptureHTML returns the browser's serialization of the live document,
// truncated by the client when it exceeds the snapshot limit.
func (s *Session) CaptureHTML() (string, error) {
	reply, err := s.roundTrip(protocol.NewSnapshotOp(s.nextSeq()))
	if err != nil {
		return "", err
	}
	if err := s.replyError("Snapshot", reply); err != nil {
		return "", err
	}
	return reply.Value, nil
}

// replyError maps a non-OK reply status to an error.
func (s *Session) replyError(op string, reply *protocol.OpReply) error {
	switch reply.Status {
	case protocol.OpOK:
		return nil
	case protocol.OpUnsupported:
		return host.ErrUnsupported
	case protocol.OpNotFound:
		return &OpError{SessionID: s.ID, Op: op, Detail: reply.Error, Err: ErrUnknownRef}
	default:
		return &OpError{SessionID: s.ID, Op: op, Detail: reply.Error, Err: ErrOpFailed}
	}
}
