// Package host defines the contract between mote and the environment that
// owns the document: the element tree, attribute storage, selector and
// event primitives, load-state signals, and timers. The library never
// creates or destroys elements itself; everything goes through an Env.
//
// # Hosts
//
// Two hosts ship with the repository: memdom (an in-memory document for
// tests, tooling, and server-side use) and bridge (a live browser page
// driven over a WebSocket). Embedders can supply their own by
// implementing Env and whichever side interfaces apply.
//
// # Capabilities
//
// Capabilities is computed once per document, at construction, and never
// re-probed: strategy selection elsewhere in the library assumes the
// environment does not change for the life of the process. Probing is
// explicit rather than sniffed at each call site; hosts that already know
// their capability set (the bridge learns it during its handshake)
// implement CapabilityReporter instead.
//
// # Delivery contract
//
// Listener callbacks registered through Listen and load-signal callbacks
// registered through OnLoadSignal must be invoked on the document's
// dispatch goroutine. In-process hosts satisfy this by being driven from
// that goroutine; remote hosts post incoming work onto the document's
// queue. After is the raw timer primitive and fires on its own goroutine;
// callers marshal as needed.
package host
