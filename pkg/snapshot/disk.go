package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiskStore stores snapshots on the local filesystem: the raw HTML under
// <id>.html and a JSON metadata sidecar under <id>.json.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore rooted at dir, creating the directory
// if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *DiskStore) Dir() string { return s.dir }

// Save writes the snapshot HTML and its metadata sidecar. The sidecar is
// written second, so a snapshot without one is an aborted save and List
// skips it.
func (s *DiskStore) Save(snap *Snapshot) error {
	if err := os.WriteFile(s.htmlPath(snap.ID), []byte(snap.HTML), 0644); err != nil {
		return err
	}

	meta := *snap
	meta.HTML = ""
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		os.Remove(s.htmlPath(snap.ID))
		return err
	}
	if err := os.WriteFile(s.metaPath(snap.ID), data, 0644); err != nil {
		os.Remove(s.htmlPath(snap.ID))
		return err
	}
	return nil
}

// Load reads a snapshot and its HTML back from disk.
func (s *DiskStore) Load(id string) (*Snapshot, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	html, err := os.ReadFile(s.htmlPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	snap.HTML = string(html)
	return &snap, nil
}

// List scans the directory for metadata sidecars, newest first. Entries
// that fail to decode are skipped rather than failing the whole listing.
func (s *DiskStore) List() ([]*Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var out []*Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			continue
		}
		out = append(out, &snap)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

func (s *DiskStore) htmlPath(id string) string {
	return filepath.Join(s.dir, id+".html")
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
