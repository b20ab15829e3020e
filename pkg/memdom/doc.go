// Package memdom is an in-memory host environment over a parsed HTML
// tree. It backs tests, the demo command and server-side snapshots with
// a document that behaves like a browser's without needing one.
//
// The tree comes from golang.org/x/net/html and selector matching from
// github.com/andybalholm/cascadia. On top of those the document keeps
// everything a host needs to be probed and driven: per-event listener
// registries with synthetic propagation, a style-rule store for the
// legacy probe strategy, simulated load phases with primary and failsafe
// signals, a layout readiness sentinel and plain timer scheduling.
//
// Two profiles control which primitives the document admits to having.
// ProfileModern exposes the full set. ProfileLegacy denies the native
// selector engine, load signals and modern event registration, which is
// the capability surface of the old hosts the library's fallback paths
// exist for; tests use it to force those paths.
//
// Documents are safe for concurrent use. Event and signal listeners run
// synchronously on the goroutine that fires them.
package memdom
