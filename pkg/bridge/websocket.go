package bridge

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/protocol"
)

// === Read Loop ===

// readLoop pumps inbound frames from one connection until it dies, then
// detaches it. There is one read loop per connection; a resume starts a new
// one and the identity check in detach keeps the old loop from clobbering
// the new connection.
//
// The read loop never runs listener callbacks. A delegated handler calls
// Match, which blocks until this loop delivers the reply; routing events
// through the event loop keeps the replies flowing.
func (s *Session) readLoop(conn *websocket.Conn) {
	defer s.detach(conn)

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				s.logger.Warn("connection lost", "error", err)
			} else {
				s.logger.Debug("connection closed", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			s.logger.Debug("ignoring non-binary message", "type", msgType)
			continue
		}

		s.bytesRecv.Add(uint64(len(data)))
		s.touch()

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame", "error", err)
			s.sendError(protocol.ErrInvalidFrame, "malformed frame")
			continue
		}

		switch frame.Type {
		case protocol.FrameReply:
			s.handleReply(frame.Payload)
		case protocol.FrameEvent:
			s.handleEvent(frame.Payload)
		case protocol.FrameControl:
			s.handleControl(frame.Payload)
		case protocol.FrameError:
			s.handleErrorMessage(frame.Payload)
		default:
			// Hello after handshake, op frames from the browser.
			s.logger.Warn("unexpected frame", "frame", frame.Type)
		}
	}
}

// handleReply routes an op reply to its waiting round trip. Replies with no
// waiter are normal: the op timed out and the round trip gave up.
func (s *Session) handleReply(payload []byte) {
	reply, err := protocol.DecodeOpReply(payload)
	if err != nil {
		s.logger.Warn("bad op reply", "error", err)
		s.sendError(protocol.ErrInvalidMessage, "malformed op reply")
		return
	}

	s.pendingMu.Lock()
	ch, ok := s.pending[reply.Seq]
	s.pendingMu.Unlock()

	if !ok {
		s.logger.Debug("stale reply", "seq", reply.Seq)
		return
	}
	ch <- reply
}

// handleEvent decodes a browser notification and routes it: fired events
// and load signals go to the event loop, state changes update the cached
// ready state in place.
func (s *Session) handleEvent(payload []byte) {
	kind, msg, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("bad event", "error", err)
		s.sendError(protocol.ErrInvalidMessage, "malformed event")
		return
	}

	if s.observer != nil {
		s.observer.EventRelayed(kind)
	}

	switch kind {
	case protocol.EventFired:
		fe := msg.(*protocol.FiredEvent)
		select {
		case s.events <- fe:
		default:
			// Shedding load beats blocking the read loop: a blocked
			// read loop stalls every op reply.
			s.logger.Warn("event queue full, dropping event",
				"type", fe.Type, "listener", fe.Listener)
		}
	case protocol.EventLoadSignal:
		ls := msg.(*protocol.LoadSignal)
		select {
		case s.signals <- ls.HostSignal():
		default:
			s.logger.Warn("signal queue full, dropping load signal",
				"signal", ls.HostSignal())
		}
	case protocol.EventStateChange:
		sc := msg.(*protocol.StateChange)
		s.readyState.Store(uint32(sc.HostState()))
		s.logger.Debug("ready state changed", "state", sc.HostState())
	}
}

// handleControl answers pings, computes RTT from pongs, and honors byes.
func (s *Session) handleControl(payload []byte) {
	ct, msg, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("bad control message", "error", err)
		return
	}

	switch ct {
	case protocol.ControlPing:
		pp := msg.(*protocol.PingPong)
		s.sendPong(pp.Timestamp)
	case protocol.ControlPong:
		pp := msg.(*protocol.PingPong)
		if rtt := time.Now().UnixMilli() - int64(pp.Timestamp); rtt >= 0 {
			s.rttNanos.Store((time.Duration(rtt) * time.Millisecond).Nanoseconds())
		}
	case protocol.ControlBye:
		bm := msg.(*protocol.ByeMessage)
		s.logger.Info("browser said goodbye", "reason", bm.Reason, "message", bm.Message)
		s.Close()
	}
}

// handleErrorMessage logs a browser-reported error and closes the session
// when the browser marks it fatal.
func (s *Session) handleErrorMessage(payload []byte) {
	em, err := protocol.DecodeErrorMessage(payload)
	if err != nil {
		s.logger.Warn("bad error message", "error", err)
		return
	}

	s.logger.Warn("browser reported error",
		"code", em.Code, "message", em.Message, "fatal", em.IsFatal())
	if em.IsFatal() {
		s.Close()
	}
}

// === Write Loop ===

// writeLoop sends heartbeat pings for the life of the session. It survives
// detach by skipping beats while no connection is attached.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.Detached() {
				continue
			}
			// Write errors detach inside sendFrame; nothing to do here.
			s.sendPing()
		}
	}
}

// === Event Loop ===

// eventLoop delivers fired events and load signals to their callbacks, one
// at a time, off the read loop. Callbacks are free to issue ops.
func (s *Session) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case fe := <-s.events:
			s.dispatchFired(fe)
		case sig := <-s.signals:
			s.dispatchSignal(sig)
		}
	}
}

// dispatchFired runs the callback registered for the event's listener ID.
func (s *Session) dispatchFired(fe *protocol.FiredEvent) {
	s.listenerMu.RLock()
	fn := s.listeners[fe.Listener]
	s.listenerMu.RUnlock()

	if fn == nil {
		// An unlisten raced an in-flight event.
		s.logger.Debug("event for unknown listener",
			"listener", fe.Listener, "type", fe.Type)
		return
	}

	s.eventCount.Add(1)

	var target host.Node
	if fe.Target != protocol.RefNone {
		target = remoteNode{ref: fe.Target}
	}
	fn(remoteEvent{typ: fe.Type, target: target})
}

// dispatchSignal latches a load signal and runs its waiters. A signal fires
// at most once; duplicates from the browser are dropped.
func (s *Session) dispatchSignal(sig host.LoadSignal) {
	s.signalMu.Lock()
	if s.fired[sig] {
		s.signalMu.Unlock()
		return
	}
	s.fired[sig] = true
	waiters := s.waiters[sig]
	delete(s.waiters, sig)
	s.signalMu.Unlock()

	s.logger.Debug("load signal", "signal", sig, "waiters", len(waiters))
	for _, fn := range waiters {
		fn()
	}
}
