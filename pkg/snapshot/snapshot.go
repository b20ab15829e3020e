package snapshot

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned when a snapshot doesn't exist in the store.
var ErrNotFound = errors.New("snapshot: not found")

// Snapshot is a captured document: the serialized HTML plus enough
// metadata to tell captures apart. The hash identifies the content, the
// ID identifies the capture.
type Snapshot struct {
	// ID is the unique identifier for this capture.
	ID string `json:"id"`

	// PageURL is the document location at capture time.
	PageURL string `json:"page_url"`

	// HTML is the serialized document. List results omit it.
	HTML string `json:"-"`

	// HTMLHash is the SHA-256 of HTML, hex encoded.
	HTMLHash string `json:"html_hash"`

	// TakenAt is the capture time.
	TakenAt time.Time `json:"taken_at"`
}

// New builds a snapshot of html as captured from pageURL, stamping it
// with a random ID and the content hash.
func New(pageURL string, html []byte) *Snapshot {
	sum := sha256.Sum256(html)
	return &Snapshot{
		ID:       generateID(),
		PageURL:  pageURL,
		HTML:     string(html),
		HTMLHash: hex.EncodeToString(sum[:]),
		TakenAt:  time.Now().UTC(),
	}
}

// Store is the interface for snapshot storage backends.
// Implement this interface to use S3, GCS, or other storage.
type Store interface {
	// Save stores the snapshot under its ID.
	Save(snap *Snapshot) error

	// Load retrieves a snapshot by ID, including its HTML.
	Load(id string) (*Snapshot, error)

	// List returns the stored snapshots without their HTML bodies,
	// newest first.
	List() ([]*Snapshot, error)
}

// generateID generates a cryptographically random snapshot ID.
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
