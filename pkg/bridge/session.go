package bridge

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/protocol"
)

// === Session ===

// Session is one connected browser page. It owns the WebSocket, correlates
// ops with replies, relays browser events to registered listeners, and
// implements host.Env so a dom.Document can drive the remote page.
//
// A session survives its connection: when the socket drops the session
// detaches and keeps its state (listeners, latched load signals, node refs
// held by callers) until the browser reconnects with the same session ID or
// the resume window expires. The browser keeps its side of the ref and
// listener tables alive across reconnects of the same page, which is what
// makes resuming sound.
type Session struct {
	// ID is the unique session identifier, assigned at handshake.
	ID string

	// PageURL is the URL the browser reported in its hello.
	PageURL string

	// CreatedAt is when the session was established.
	CreatedAt time.Time

	// conn is the active WebSocket, nil while detached. Guarded by mu,
	// which also serializes writes: gorilla/websocket allows one
	// concurrent writer.
	conn *websocket.Conn
	mu   sync.Mutex

	closed     atomic.Bool
	done       chan struct{} // closed exactly once, in Close
	detachedAt atomic.Int64  // unix nano of the detach, 0 while attached
	lastActive atomic.Int64  // unix nano of the last inbound message

	// Handshake-reported page facts.
	caps      host.Capabilities
	viewportW uint16
	viewportH uint16

	// readyState caches the browser's document state. Seeded from the
	// hello, updated by state-change events. ReadyState() must not
	// round-trip: the ready dispatcher reads it synchronously.
	readyState atomic.Uint32

	// Op correlation. seq is the next request correlator; pending maps
	// in-flight correlators to their reply channels.
	seq       atomic.Uint32
	pendingMu sync.Mutex
	pending   map[uint32]chan *protocol.OpReply

	// listeners maps browser-assigned listener IDs to callbacks.
	listenerMu sync.RWMutex
	listeners  map[uint32]func(host.Event)

	// Load signals latch: once a signal arrives it stays fired, and late
	// registrations run immediately. waiters are keyed so cancel can
	// remove exactly one registration.
	signalMu  sync.Mutex
	fired     map[host.LoadSignal]bool
	waiters   map[host.LoadSignal]map[uint64]func()
	waiterSeq uint64

	// events and signals feed the event loop. Listener callbacks must not
	// run on the read loop: a delegated handler calls Match, which blocks
	// on a reply the read loop has to deliver.
	events  chan *protocol.FiredEvent
	signals chan host.LoadSignal

	config   *Config
	logger   *slog.Logger
	observer Observer
	onClose  func(*Session) // registry removal hook

	// Stats.
	opCount    atomic.Uint64
	eventCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64
	rttNanos   atomic.Int64 // most recent heartbeat round trip
}

// SessionStats is a point-in-time snapshot of session counters.
type SessionStats struct {
	ID         string
	PageURL    string
	CreatedAt  time.Time
	LastActive time.Time
	Detached   bool
	Ops        uint64
	Events     uint64
	BytesSent  uint64
	BytesRecv  uint64
	RTT        time.Duration
}

// newSession creates a session from a decoded client hello. The session is
// inert until start is called with the connection.
func newSession(id string, hello *protocol.ClientHello, cfg *Config, logger *slog.Logger) *Session {
	caps := hello.Capabilities()
	// The protocol has no frame op: even when the browser has a native
	// frame callback, this env cannot deliver it. Documents fall back to
	// their frame-rate timer.
	caps.FrameTicks = false

	s := &Session{
		ID:        id,
		PageURL:   hello.PageURL,
		CreatedAt: time.Now(),
		caps:      caps,
		viewportW: hello.ViewportW,
		viewportH: hello.ViewportH,
		done:      make(chan struct{}),
		pending:   make(map[uint32]chan *protocol.OpReply),
		listeners: make(map[uint32]func(host.Event)),
		fired:     make(map[host.LoadSignal]bool),
		waiters:   make(map[host.LoadSignal]map[uint64]func()),
		events:    make(chan *protocol.FiredEvent, cfg.MaxEventQueue),
		signals:   make(chan host.LoadSignal, 4),
		config:    cfg,
		logger:    logger.With("session_id", id),
		observer:  cfg.Observer,
	}
	s.readyState.Store(uint32(hello.DocumentState()))
	s.touch()
	return s
}

// generateSessionID returns a 32-character hex session identifier.
func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// start attaches the connection and launches the session goroutines: the
// read loop (per connection), the write loop (heartbeats), and the event
// loop (listener dispatch). The write and event loops live as long as the
// session and survive detach/resume.
func (s *Session) start(conn *websocket.Conn) {
	s.attach(conn)
	go s.readLoop(conn)
	go s.writeLoop()
	go s.eventLoop()
	if s.observer != nil {
		s.observer.SessionStarted(s.ID)
	}
}

// attach installs conn as the active connection.
func (s *Session) attach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.detachedAt.Store(0)
	s.touch()
}

// detach clears the connection if conn is still the active one. The
// identity check makes stale read loops (from a connection that was already
// replaced by a resume) harmless.
func (s *Session) detach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked(conn)
}

// detachLocked is detach for callers already holding mu.
func (s *Session) detachLocked(conn *websocket.Conn) {
	if s.conn != conn || s.conn == nil {
		return
	}
	s.conn = nil
	s.detachedAt.Store(time.Now().UnixNano())
	s.logger.Info("session detached", "resume_window", s.config.ResumeWindow)
}

// resume swaps in a new connection after a reconnect, closing the old one
// if it was somehow still present, and starts a read loop for it.
func (s *Session) resume(conn *websocket.Conn) {
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.detachedAt.Store(0)
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.touch()
	s.logger.Info("session resumed")
	go s.readLoop(conn)
}

// Detached reports whether the session currently has no connection.
func (s *Session) Detached() bool {
	return s.detachedAt.Load() != 0
}

// detachedFor returns how long the session has been detached, or 0 while
// attached.
func (s *Session) detachedFor(now time.Time) time.Duration {
	at := s.detachedAt.Load()
	if at == 0 {
		return 0
	}
	return now.Sub(time.Unix(0, at))
}

// touch records inbound activity.
func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last inbound message.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:         s.ID,
		PageURL:    s.PageURL,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive(),
		Detached:   s.Detached(),
		Ops:        s.opCount.Load(),
		Events:     s.eventCount.Load(),
		BytesSent:  s.bytesSent.Load(),
		BytesRecv:  s.bytesRecv.Load(),
		RTT:        time.Duration(s.rttNanos.Load()),
	}
}

// Close shuts the session down: notifies the browser, closes the socket,
// releases every in-flight op and the session goroutines. Safe to call more
// than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}

	// Unblock roundTrip and stop the write and event loops before
	// touching the socket.
	close(s.done)

	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		// Best effort: a protocol-level goodbye, then the WebSocket
		// close handshake.
		ct, bye := protocol.NewBye(protocol.ByeShutdown, "")
		payload := protocol.EncodeControl(ct, bye)
		frame := protocol.NewFrame(protocol.FrameControl, payload)
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}

	if s.observer != nil {
		s.observer.SessionClosed(s.ID)
	}
	if s.onClose != nil {
		s.onClose(s)
	}

	s.logger.Info("session closed",
		"ops", s.opCount.Load(),
		"events", s.eventCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load(),
		"lifetime", time.Since(s.CreatedAt).Round(time.Millisecond))
}

// === Sending ===

// sendFrame writes one protocol frame to the browser. A write error
// detaches the connection rather than closing the session; the browser can
// still resume.
func (s *Session) sendFrame(ft protocol.FrameType, payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNoConnection
	}

	frame := protocol.NewFrame(ft, payload)
	data := frame.Encode()

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Warn("write failed, detaching", "frame", ft, "error", err)
		conn := s.conn
		s.detachLocked(conn)
		conn.Close()
		return err
	}

	s.bytesSent.Add(uint64(len(data)))
	return nil
}

// nextSeq returns the next op correlator. Zero is skipped so a zero Seq
// always means "unset".
func (s *Session) nextSeq() uint32 {
	for {
		if seq := s.seq.Add(1); seq != 0 {
			return seq
		}
	}
}

// roundTrip sends an op and waits for the matching reply, the op timeout,
// or session close. Replies that arrive after the timeout are dropped by
// handleReply; the correlator makes them harmless.
func (s *Session) roundTrip(op *protocol.OpRequest) (*protocol.OpReply, error) {
	ch := make(chan *protocol.OpReply, 1)

	s.pendingMu.Lock()
	s.pending[op.Seq] = ch
	s.pendingMu.Unlock()

	defer func() {
		s.pendingMu.Lock()
		delete(s.pending, op.Seq)
		s.pendingMu.Unlock()
	}()

	start := time.Now()
	if err := s.sendFrame(protocol.FrameOp, protocol.EncodeOpRequest(op)); err != nil {
		s.observeOp(op.Code, time.Since(start), err)
		return nil, err
	}
	s.opCount.Add(1)

	timer := time.NewTimer(s.config.OpTimeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		s.observeOp(op.Code, time.Since(start), nil)
		return reply, nil
	case <-timer.C:
		s.observeOp(op.Code, time.Since(start), ErrOpTimeout)
		s.logger.Warn("op timed out", "op", op.Code, "seq", op.Seq)
		return nil, &OpError{SessionID: s.ID, Op: op.Code.String(), Err: ErrOpTimeout}
	case <-s.done:
		s.observeOp(op.Code, time.Since(start), ErrSessionClosed)
		return nil, ErrSessionClosed
	}
}

// observeOp reports an op outcome to the observer, if any.
func (s *Session) observeOp(code protocol.OpCode, d time.Duration, err error) {
	if s.observer != nil {
		s.observer.OpCompleted(code, d, err)
	}
}

// sendPing sends a protocol-level heartbeat carrying the current time, so
// the pong can yield an RTT sample.
func (s *Session) sendPing() error {
	ct, ping := protocol.NewPing(uint64(time.Now().UnixMilli()))
	return s.sendFrame(protocol.FrameControl, protocol.EncodeControl(ct, ping))
}

// sendPong answers a browser ping, echoing its timestamp.
func (s *Session) sendPong(timestamp uint64) error {
	ct, pong := protocol.NewPong(timestamp)
	return s.sendFrame(protocol.FrameControl, protocol.EncodeControl(ct, pong))
}

// sendError sends a non-fatal error message to the browser.
func (s *Session) sendError(code protocol.ErrorCode, message string) error {
	em := protocol.NewError(code, message)
	return s.sendFrame(protocol.FrameError, protocol.EncodeErrorMessage(em))
}
