package snapshot_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mote-dev/mote/pkg/snapshot"
)

func TestNew(t *testing.T) {
	html := []byte("<html><body><p>hello</p></body></html>")
	snap := snapshot.New("https://example.com/page", html)

	if len(snap.ID) != 32 {
		t.Errorf("ID length = %d, want 32", len(snap.ID))
	}
	if snap.PageURL != "https://example.com/page" {
		t.Errorf("PageURL = %q", snap.PageURL)
	}
	if snap.HTML != string(html) {
		t.Error("HTML does not match the input")
	}
	if len(snap.HTMLHash) != 64 {
		t.Errorf("HTMLHash length = %d, want 64 hex chars", len(snap.HTMLHash))
	}
	if snap.TakenAt.IsZero() {
		t.Error("TakenAt is zero")
	}
}

func TestNew_HashIsStable(t *testing.T) {
	html := []byte("<p>same content</p>")
	a := snapshot.New("https://example.com/a", html)
	b := snapshot.New("https://example.com/b", html)

	if a.HTMLHash != b.HTMLHash {
		t.Error("same content produced different hashes")
	}
	if a.ID == b.ID {
		t.Error("two captures share an ID")
	}

	c := snapshot.New("https://example.com/a", []byte("<p>different</p>"))
	if c.HTMLHash == a.HTMLHash {
		t.Error("different content produced the same hash")
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := snapshot.NewMemoryStore()
	snap := snapshot.New("https://example.com/", []byte("<p>x</p>"))

	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(snap.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.HTML != snap.HTML || got.PageURL != snap.PageURL || got.HTMLHash != snap.HTMLHash {
		t.Errorf("Load() = %+v, want the saved snapshot", got)
	}

	if _, err := store.Load("missing"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, snapshot.ErrNotFound)
	}
}

func TestMemoryStore_ListNewestFirstWithoutHTML(t *testing.T) {
	store := snapshot.NewMemoryStore()

	older := snapshot.New("https://example.com/old", []byte("<p>old</p>"))
	older.TakenAt = time.Now().Add(-time.Hour)
	newer := snapshot.New("https://example.com/new", []byte("<p>new</p>"))

	if err := store.Save(older); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d snapshots, want 2", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Error("List() is not newest first")
	}
	for _, snap := range list {
		if snap.HTML != "" {
			t.Errorf("List() entry %s carries HTML", snap.ID)
		}
	}
}

func TestMemoryStore_LoadReturnsACopy(t *testing.T) {
	store := snapshot.NewMemoryStore()
	snap := snapshot.New("https://example.com/", []byte("<p>x</p>"))
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	first, _ := store.Load(snap.ID)
	first.HTML = "mutated"

	second, _ := store.Load(snap.ID)
	if second.HTML != "<p>x</p>" {
		t.Error("mutating a loaded snapshot changed the stored one")
	}
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	snap := snapshot.New("https://example.com/page", []byte("<html><body>disk</body></html>"))
	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Raw HTML and sidecar both land on disk.
	if _, err := os.Stat(filepath.Join(dir, snap.ID+".html")); err != nil {
		t.Errorf("HTML file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, snap.ID+".json")); err != nil {
		t.Errorf("metadata sidecar missing: %v", err)
	}

	got, err := store.Load(snap.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.HTML != snap.HTML {
		t.Error("Load() HTML does not match")
	}
	if got.PageURL != snap.PageURL || got.HTMLHash != snap.HTMLHash {
		t.Errorf("Load() metadata = %+v", got)
	}
	if !got.TakenAt.Equal(snap.TakenAt) {
		t.Errorf("Load() TakenAt = %v, want %v", got.TakenAt, snap.TakenAt)
	}
}

func TestDiskStore_LoadMissing(t *testing.T) {
	store, err := snapshot.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	if _, err := store.Load("deadbeef"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, snapshot.ErrNotFound)
	}
}

func TestDiskStore_ListSkipsStrayFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := snapshot.NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	older := snapshot.New("https://example.com/a", []byte("<p>a</p>"))
	older.TakenAt = time.Now().Add(-time.Minute)
	newer := snapshot.New("https://example.com/b", []byte("<p>b</p>"))
	if err := store.Save(older); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Stray files in the directory don't break the listing.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644)

	list, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d snapshots, want 2", len(list))
	}
	if list[0].ID != newer.ID {
		t.Error("List() is not newest first")
	}
}

func TestDiskStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	if _, err := snapshot.NewDiskStore(dir); err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("store directory not created: %v", err)
	}
}
