package bridge

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mote-dev/mote/pkg/protocol"
)

// === Registry ===

// Registry tracks the live sessions and expires detached ones. Attached
// sessions need no expiry of their own: a dead connection misses read
// deadlines and heartbeats, detaches, and then ages out here.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	peak     int

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64

	config *Config
	logger *slog.Logger
	done   chan struct{}
	once   sync.Once
}

// RegistryStats is a point-in-time snapshot of registry counters.
type RegistryStats struct {
	Active       int
	Detached     int
	Peak         int
	TotalCreated uint64
	TotalClosed  uint64
}

// newRegistry creates a registry and starts its sweep loop.
func newRegistry(cfg *Config, logger *slog.Logger) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		config:   cfg,
		logger:   logger.With("component", "registry"),
		done:     make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// create registers a new session for a decoded hello.
func (r *Registry) create(hello *protocol.ClientHello, logger *slog.Logger) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.config.MaxSessions > 0 && len(r.sessions) >= r.config.MaxSessions {
		r.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	s := newSession(id, hello, r.config, logger)
	s.onClose = r.remove
	r.sessions[id] = s
	if len(r.sessions) > r.peak {
		r.peak = len(r.sessions)
	}
	r.mu.Unlock()

	r.totalCreated.Add(1)
	return s, nil
}

// Get returns the session with the given ID, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// remove drops a closed session from the registry. Runs from Session.Close
// via the onClose hook.
func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	delete(r.sessions, s.ID)
	r.mu.Unlock()
	r.totalClosed.Add(1)
}

// Count returns the number of registered sessions, attached or detached.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Each calls fn for every registered session.
func (r *Registry) Each(fn func(*Session)) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// Stats returns a snapshot of the registry counters.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	detached := 0
	for _, s := range r.sessions {
		if s.Detached() {
			detached++
		}
	}
	stats := RegistryStats{
		Active:   len(r.sessions),
		Detached: detached,
		Peak:     r.peak,
	}
	r.mu.RUnlock()

	stats.TotalCreated = r.totalCreated.Load()
	stats.TotalClosed = r.totalClosed.Load()
	return stats
}

// sweepLoop expires sessions that stayed detached past the resume window.
func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.sweep(time.Now())
		}
	}
}

// sweep closes every session detached longer than the resume window.
// Close removes the session via onClose, so expired sessions are collected
// under the read lock and closed outside it.
func (r *Registry) sweep(now time.Time) {
	var expired []*Session
	r.mu.RLock()
	for _, s := range r.sessions {
		if d := s.detachedFor(now); d > r.config.ResumeWindow {
			expired = append(expired, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range expired {
		r.logger.Info("resume window expired", "session_id", s.ID)
		s.Close()
	}
}

// Shutdown stops the sweep loop and closes every session.
func (r *Registry) Shutdown() {
	r.once.Do(func() { close(r.done) })

	var all []*Session
	r.mu.RLock()
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
	r.logger.Info("registry shut down", "closed", len(all))
}
