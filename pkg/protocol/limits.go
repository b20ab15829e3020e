package protocol

import "errors"

// Field length limits. These complement the allocation limits in decoder.go:
// the decoder caps what a single length prefix may allocate, while these cap
// what a well-formed message may legitimately carry. Oversized fields are
// rejected before they reach session state.
const (
	// MaxSelectorLen limits CSS selector text. Generated selectors can get
	// long, but 4KB is far beyond anything a real page produces.
	MaxSelectorLen = 4096

	// MaxNameLen limits attribute names, style property names, and event
	// type names.
	MaxNameLen = 256

	// MaxValueLen limits attribute and style rule values. Class lists and
	// inline values stay tiny; 16KB leaves room for data attributes.
	MaxValueLen = 16 * 1024

	// MaxURLLen limits the page URL carried in the hello. Browsers
	// themselves refuse URLs much shorter than this.
	MaxURLLen = 8192

	// MaxSessionIDLen limits session identifiers. Server-issued IDs are
	// 32 hex characters; the margin tolerates future formats.
	MaxSessionIDLen = 128

	// MaxTextLen limits human-readable text in error and bye messages.
	MaxTextLen = 1024

	// MaxSnapshotLen limits a serialized document carried in a snapshot
	// reply. Clients truncate the markup to fit; the frame payload cap
	// bounds the whole message at 64KB regardless.
	MaxSnapshotLen = 48 * 1024

	// MaxQueryResults limits the number of node references in a single
	// query reply. Larger result sets indicate a runaway selector.
	MaxQueryResults = 4096
)

// ErrFieldTooLong is returned when a decoded field exceeds its length limit.
var ErrFieldTooLong = errors.New("protocol: field exceeds length limit")

// checkFieldLen validates a decoded field length against its limit.
func checkFieldLen(n, max int) error {
	if n > max {
		return ErrFieldTooLong
	}
	return nil
}
