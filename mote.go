// Package mote provides the public API for the mote DOM toolkit.
//
// This is the recommended import for most applications:
//
//	import "github.com/mote-dev/mote"
//
// Usage:
//
//	doc := mote.NewDocument(env)
//	doc.Ready(func() {
//	    for _, card := range doc.QueryAll(".card") {
//	        doc.AddClass(card, "visible")
//	    }
//	})
//
// An env is anything implementing mote.Env: a memdom.Document for tests,
// or a bridge.Session for a live browser page.
package mote

import (
	"github.com/mote-dev/mote/pkg/dom"
	"github.com/mote-dev/mote/pkg/events"
	"github.com/mote-dev/mote/pkg/fetch"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/ready"
	"github.com/mote-dev/mote/pkg/selector"
	"github.com/mote-dev/mote/pkg/strutil"
)

// =============================================================================
// Document (pkg/dom exposed at the root)
// =============================================================================

// Document is the main entry point: class helpers, selector lookup, the
// ready latch, event binding and delegation, and one-shot fetches, all
// against one host environment.
type Document = dom.Document

// Option configures a Document.
type Option = dom.Option

// NewDocument builds a Document over env. Capabilities are probed once,
// here; the selector strategy is fixed for the document's lifetime.
var NewDocument = dom.New

// WithLogger sets the document's logger.
var WithLogger = dom.WithLogger

// WithTransport sets the transport used by Document.Request.
var WithTransport = dom.WithTransport

// WithQueue makes the document share a caller-owned dispatch queue
// instead of running its own.
var WithQueue = dom.WithQueue

// WithReadyOptions forwards options to the ready dispatcher.
var WithReadyOptions = dom.WithReadyOptions

// =============================================================================
// Host environment (pkg/host)
// =============================================================================

// Env is the set of host primitives a Document consumes.
type Env = host.Env

// Node is an opaque handle to a single element owned by the host.
type Node = host.Node

// Event is a host event delivered to a listener.
type Event = host.Event

// Capabilities records what the host can do, probed once per document.
type Capabilities = host.Capabilities

// ProbeCapabilities inspects env and reports its capability set.
var ProbeCapabilities = host.Probe

// ReadyState is the host-reported document load-completion status.
type ReadyState = host.ReadyState

// Ready states.
const (
	ReadyLoading     = host.ReadyLoading
	ReadyInteractive = host.ReadyInteractive
	ReadyComplete    = host.ReadyComplete
)

// ErrUnsupported is returned by Env methods the host does not implement.
var ErrUnsupported = host.ErrUnsupported

// =============================================================================
// Events (pkg/events)
// =============================================================================

// Handle undoes one event registration. The zero value is inert.
type Handle = events.Handle

// DelegateListener receives the matched element alongside the event.
type DelegateListener = events.DelegateListener

// =============================================================================
// Fetch (pkg/fetch)
// =============================================================================

// Request describes one fetch: URL, method, and outcome callbacks.
type Request = fetch.Config

// Transport performs one HTTP exchange for Document.Request.
type Transport = fetch.Transport

// HTTPTransport is the net/http-backed Transport.
type HTTPTransport = fetch.HTTPTransport

// StatusError reports a non-200 response delivered to OnFailure.
type StatusError = fetch.StatusError

// ErrNoTransport is delivered to OnFailure when the document was built
// without a transport.
var ErrNoTransport = fetch.ErrNoTransport

// =============================================================================
// Selector strategy (pkg/selector)
// =============================================================================

// Strategy identifies how a document resolves selectors.
type Strategy = selector.Strategy

// Selector strategies.
const (
	StrategyNative           = selector.StrategyNative
	StrategyLegacyStyleProbe = selector.StrategyLegacyStyleProbe
)

// =============================================================================
// Ready sources (pkg/ready)
// =============================================================================

// ReadySource identifies which completion source fired the ready latch.
type ReadySource = ready.Source

// WithPollInterval adjusts the legacy readiness poll cadence.
var WithPollInterval = ready.WithPollInterval

// WithReadyTimeout bounds the wait for any completion signal.
var WithReadyTimeout = ready.WithTimeout

// =============================================================================
// Class string helpers (pkg/strutil)
// =============================================================================

// Trim strips ASCII whitespace from both ends.
var Trim = strutil.Trim

// HasToken reports whether the whitespace-separated list contains tok.
var HasToken = strutil.HasToken

// AddToken appends tok to the list unless already present.
var AddToken = strutil.AddToken

// RemoveToken removes every occurrence of tok from the list.
var RemoveToken = strutil.RemoveToken

// ToggleToken adds tok when absent and removes it when present.
var ToggleToken = strutil.ToggleToken

// SetToken adds or removes tok according to on.
var SetToken = strutil.SetToken

// Template substitutes {{name}} placeholders from vars.
var Template = strutil.Template
