// Package snapshot captures and stores serialized documents.
//
// A snapshot pairs a page's HTML with its capture metadata: where it came
// from, when it was taken, and a SHA-256 content hash for comparing
// captures of the same page across time. Both sides of the toolkit
// produce them — an in-memory document serializes itself, and a bridge
// session asks the live browser for its current markup.
//
// Storage is pluggable through the Store interface. MemoryStore backs
// tests and the demo harness, DiskStore writes an HTML file plus JSON
// sidecar per capture, and an S3-backed store ships as a build-tagged
// example to copy from.
//
// Capture from a parsed document:
//
//	doc, _ := memdom.New(src)
//	html, _ := doc.HTML()
//	snap := snapshot.New(doc.URL(), []byte(html))
//	store.Save(snap)
package snapshot
