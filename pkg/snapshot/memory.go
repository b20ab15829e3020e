package snapshot

import (
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in memory. Good for tests and the demo
// harness; everything is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]*Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]*Snapshot)}
}

// Save stores the snapshot under its ID.
func (s *MemoryStore) Save(snap *Snapshot) error {
	cp := *snap
	s.mu.Lock()
	s.snaps[cp.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Load retrieves a snapshot by ID.
func (s *MemoryStore) Load(id string) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snaps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

// List returns the stored snapshots without HTML, newest first.
func (s *MemoryStore) List() ([]*Snapshot, error) {
	s.mu.RLock()
	out := make([]*Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		cp := *snap
		cp.HTML = ""
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}
