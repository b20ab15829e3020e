package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mote-dev/mote/pkg/protocol"
)

// Endpoint paths served by the bridge. Mount Handler at the root to keep
// them; the browser shim dials PathWS on its own origin.
const (
	PathWS     = "/mote/ws"
	PathClient = "/mote/client.js"
	PathHealth = "/mote/healthz"
)

// Observer receives bridge lifecycle notifications. Implementations must be
// safe for concurrent use: callbacks run on session goroutines.
// middleware.BridgeMetrics is the canonical implementation.
type Observer interface {
	// SessionStarted runs after a handshake establishes a new session.
	SessionStarted(id string)
	// SessionClosed runs once per session, when it closes.
	SessionClosed(id string)
	// OpCompleted runs for every op round trip, err nil on success.
	OpCompleted(op protocol.OpCode, d time.Duration, err error)
	// EventRelayed runs for every notification the browser sends.
	EventRelayed(kind protocol.EventKind)
}

// === Server ===

// Server hosts browser sessions over WebSocket. Each connected page becomes
// a Session, which implements host.Env; handing it to dom.New yields a
// Document that drives the remote page.
type Server struct {
	config     *Config
	logger     *slog.Logger
	registry   *Registry
	upgrader   websocket.Upgrader
	handler    http.Handler // non-bridge paths, optional
	httpServer *http.Server
}

// New creates a bridge server. A nil config uses DefaultConfig; zero fields
// in a non-nil config are filled with defaults.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	} else {
		config = config.Clone()
		config.fill()
	}

	logger := slog.Default().With("component", "bridge")

	return &Server{
		config:   config,
		logger:   logger,
		registry: newRegistry(config, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.HandshakeTimeout,
			CheckOrigin:      config.CheckOrigin,
		},
	}
}

// SetHandler sets the handler for non-bridge paths. Without one they 404.
func (s *Server) SetHandler(h http.Handler) {
	s.handler = h
}

// Handler returns an http.Handler for mounting in external routers (chi,
// stdlib mux, anything). Mount it at the root so the /mote/* paths line up
// with what the browser shim dials:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Logger)
//	r.Handle("/*", bridge.Handler())
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ServeHTTP(w, r)
	})
}

// WebSocketHandler returns an http.Handler for the WebSocket endpoint only,
// for callers routing paths themselves.
func (s *Server) WebSocketHandler() http.Handler {
	return http.HandlerFunc(s.HandleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case PathWS:
		s.HandleWebSocket(w, r)
	case PathClient:
		s.serveClient(w, r)
	case PathHealth:
		s.serveHealth(w, r)
	default:
		if s.handler != nil {
			s.handler.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

// === Handshake ===

// HandleWebSocket upgrades the connection and performs the hello exchange.
// The first frame must be a client hello; the server answers with exactly
// one server hello before any other frame.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("handshake read failed", "error", err)
		conn.Close()
		return
	}

	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		s.logger.Warn("handshake frame invalid", "error", err)
		s.sendHandshakeError(conn, protocol.HandshakeInvalidFormat)
		conn.Close()
		return
	}

	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		s.logger.Warn("client hello invalid", "error", err)
		s.sendHandshakeError(conn, protocol.HandshakeInvalidFormat)
		conn.Close()
		return
	}

	if !protocol.CurrentVersion.Compatible(hello.Version) {
		s.logger.Warn("protocol version mismatch",
			"client", hello.Version, "server", protocol.CurrentVersion)
		s.sendHandshakeError(conn, protocol.HandshakeVersionMismatch)
		conn.Close()
		return
	}

	// Resume: the page reconnected with the ID it was issued. The browser
	// keeps its ref and listener tables across reconnects, so server-side
	// state stays valid.
	if hello.SessionID != "" {
		sess := s.registry.Get(hello.SessionID)
		if sess == nil || sess.IsClosed() {
			s.logger.Info("resume rejected",
				"session_id", hello.SessionID, "reason", "unknown or expired")
			s.sendHandshakeError(conn, protocol.HandshakeSessionExpired)
			conn.Close()
			return
		}

		// The hello must be the first frame on the new connection, so it
		// goes out before resume attaches the connection to the session.
		s.sendServerHello(conn, sess.ID, protocol.ServerFlagResumed)
		sess.resume(conn)
		return
	}

	sess, err := s.registry.create(hello, s.logger)
	if err != nil {
		if err == ErrMaxSessionsReached {
			s.logger.Warn("session rejected", "reason", "max sessions",
				"max", s.config.MaxSessions)
			s.sendHandshakeError(conn, protocol.HandshakeServerBusy)
		} else {
			s.logger.Error("session create failed", "error", err)
			s.sendHandshakeError(conn, protocol.HandshakeInternalError)
		}
		conn.Close()
		return
	}

	s.sendServerHello(conn, sess.ID, 0)
	sess.start(conn)

	s.logger.Info("session started",
		"session_id", sess.ID,
		"page_url", sess.PageURL,
		"ready_state", sess.ReadyState(),
		"remote", r.RemoteAddr)
}

// sendServerHello sends a successful handshake response.
func (s *Server) sendServerHello(conn *websocket.Conn, sessionID string, flags uint16) {
	if s.config.Debug {
		flags |= protocol.ServerFlagDebug
	}
	hello := protocol.NewServerHello(sessionID, uint64(time.Now().UnixMilli()), flags)
	frame := protocol.NewFrame(protocol.FrameHello, protocol.EncodeServerHello(hello))

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// sendHandshakeError sends a handshake error response.
func (s *Server) sendHandshakeError(conn *websocket.Conn, status protocol.HandshakeStatus) {
	hello := protocol.NewServerHelloError(status)
	frame := protocol.NewFrame(protocol.FrameHello, protocol.EncodeServerHello(hello))

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	conn.WriteMessage(websocket.BinaryMessage, frame.Encode())
}

// === Health ===

// serveHealth reports liveness and session counts as JSON.
func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.registry.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": stats.Active,
		"detached": stats.Detached,
	})
}

// === Lifecycle ===

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("bridge listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.registry.Shutdown()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("bridge shutdown complete")
	return nil
}

// === Accessors ===

// Session returns the session with the given ID, or nil.
func (s *Server) Session(id string) *Session {
	return s.registry.Get(id)
}

// EachSession calls fn for every live session.
func (s *Server) EachSession(fn func(*Session)) {
	s.registry.Each(fn)
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	return s.registry.Count()
}

// Stats returns a snapshot of the registry counters.
func (s *Server) Stats() RegistryStats {
	return s.registry.Stats()
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger. Call before Run; sessions created
// earlier keep the logger they were built with.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}
