package bridge

import (
	"net/http"
	"net/url"
	"time"
)

// Config holds configuration for the bridge server and its sessions.
type Config struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin is called to validate the request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Timeouts

	// ReadTimeout is the maximum time to wait for a message from the browser.
	// Heartbeat pongs refresh it. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout is the maximum time for the initial hello exchange.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// OpTimeout is how long an op waits for its reply before failing.
	// Default: 5 seconds.
	OpTimeout time.Duration

	// ResumeWindow is how long a detached session stays resumable after
	// its connection drops. Default: 2 minutes.
	ResumeWindow time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// CleanupInterval is the interval for the detached-session sweep.
	// Default: 30 seconds.
	CleanupInterval time.Duration

	// Limits

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit. Default: 0.
	MaxSessions int

	// MaxEventQueue is the size of the per-session event channel buffer.
	// Default: 256.
	MaxEventQueue int

	// Observability

	// Observer receives session, op, and event notifications. Nil disables
	// them. middleware.BridgeMetrics satisfies this.
	Observer Observer

	// Debug enables extra logging and sets the debug flag in the server
	// hello. Default: false.
	Debug bool
}

// DefaultConfig returns a Config with sensible defaults.
// CheckOrigin enforces same-origin by default to prevent cross-site
// WebSocket hijacking.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		CheckOrigin:       SameOriginCheck,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		OpTimeout:         5 * time.Second,
		ResumeWindow:      2 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		CleanupInterval:   30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxSessions:       0,
		MaxEventQueue:     256,
	}
}

// SameOriginCheck validates that the WebSocket request origin matches the
// host. This is the secure default for CheckOrigin.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl).
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}

	// Compare the host portion (includes port if present).
	return originURL.Host == host
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// WithAddress sets the server address and returns the config for chaining.
func (c *Config) WithAddress(addr string) *Config {
	c.Address = addr
	return c
}

// WithMaxSessions sets the maximum sessions and returns the config for chaining.
func (c *Config) WithMaxSessions(max int) *Config {
	c.MaxSessions = max
	return c
}

// WithOpTimeout sets the op reply timeout and returns the config for chaining.
func (c *Config) WithOpTimeout(d time.Duration) *Config {
	c.OpTimeout = d
	return c
}

// WithResumeWindow sets the detached-session resume window and returns the
// config for chaining.
func (c *Config) WithResumeWindow(d time.Duration) *Config {
	c.ResumeWindow = d
	return c
}

// WithObserver sets the lifecycle observer and returns the config for chaining.
func (c *Config) WithObserver(o Observer) *Config {
	c.Observer = o
	return c
}

// WithDebug enables debug mode and returns the config for chaining.
func (c *Config) WithDebug() *Config {
	c.Debug = true
	return c
}

// fill replaces zero fields with defaults.
func (c *Config) fill() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.OpTimeout == 0 {
		c.OpTimeout = d.OpTimeout
	}
	if c.ResumeWindow == 0 {
		c.ResumeWindow = d.ResumeWindow
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.CleanupInterval == 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxEventQueue == 0 {
		c.MaxEventQueue = d.MaxEventQueue
	}
}
