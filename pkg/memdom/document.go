package memdom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/mote-dev/mote/pkg/host"
)

// frameInterval is the simulated animation-frame period, the nominal
// 60Hz tick.
const frameInterval = 16 * time.Millisecond

// Profile selects which primitives the document admits to having.
type Profile uint8

const (
	// ProfileModern exposes the full primitive set of a current host.
	ProfileModern Profile = iota
	// ProfileLegacy denies the native selector engine, load signals and
	// modern event registration. The style probe and the layout
	// sentinel remain, which is exactly the surface the library's
	// fallback paths were built for.
	ProfileLegacy
)

// String returns the string representation of the profile.
func (p Profile) String() string {
	switch p {
	case ProfileModern:
		return "modern"
	case ProfileLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Option customizes a Document.
type Option func(*Document)

// WithProfile sets the capability profile. Default is ProfileModern.
func WithProfile(p Profile) Option {
	return func(d *Document) { d.profile = p }
}

// WithReadyState sets the initial load state. Default is ReadyComplete:
// a freshly parsed document is already fully loaded. Use ReadyLoading to
// drive the load phases by hand with FinishParsing and FinishLoad.
func WithReadyState(rs host.ReadyState) Option {
	return func(d *Document) { d.state = rs }
}

// WithURL sets the document's page URL.
func WithURL(url string) Option {
	return func(d *Document) { d.url = url }
}

type signalReg struct {
	fn      func()
	removed bool
}

// Document is an in-memory host environment. It implements host.Env and
// the probe-facing side interfaces.
type Document struct {
	mu sync.Mutex

	tree *html.Node // document node
	root *html.Node // <html>
	body *html.Node // <body>

	profile Profile
	url     string

	state       host.ReadyState
	layoutReady bool
	signals     map[host.LoadSignal][]*signalReg

	listeners   map[*html.Node]map[string][]*listenerReg
	nonBubbling map[string]bool

	rules []*styleRule
}

// New parses src as HTML and wraps it in a document. Parsing is lenient
// the way hosts are: malformed markup yields a best-effort tree, not an
// error.
func New(src string, opts ...Option) (*Document, error) {
	tree, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("memdom: parse: %w", err)
	}

	d := &Document{
		tree:      tree,
		profile:   ProfileModern,
		state:     host.ReadyComplete,
		signals:   make(map[host.LoadSignal][]*signalReg),
		listeners: make(map[*html.Node]map[string][]*listenerReg),
		nonBubbling: map[string]bool{
			"focus":      true,
			"blur":       true,
			"mouseenter": true,
			"mouseleave": true,
			"load":       true,
			"unload":     true,
		},
	}
	for _, opt := range opts {
		opt(d)
	}

	d.root = findElement(tree, "html")
	d.body = findElement(tree, "body")
	if d.root == nil || d.body == nil {
		return nil, fmt.Errorf("memdom: parsed tree has no html/body")
	}
	d.layoutReady = d.state != host.ReadyLoading
	return d, nil
}

// findElement returns the first element named tag, depth first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// Root returns the <html> element.
func (d *Document) Root() host.Node { return d.wrap(d.root) }

// Body returns the <body> element.
func (d *Document) Body() host.Node { return d.wrap(d.body) }

// URL returns the document's page URL, if one was set.
func (d *Document) URL() string { return d.url }

// Profile returns the capability profile the document was built with.
func (d *Document) Profile() Profile { return d.profile }

// Attr returns the value of the named attribute on n, or "" when unset.
func (d *Document) Attr(n host.Node, name string) string {
	hn := d.unwrap(n)
	if hn == nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range hn.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets the named attribute on n, replacing any previous value.
func (d *Document) SetAttr(n host.Node, name, value string) {
	hn := d.unwrap(n)
	if hn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range hn.Attr {
		if hn.Attr[i].Key == name {
			hn.Attr[i].Val = value
			return
		}
	}
	hn.Attr = append(hn.Attr, html.Attribute{Key: name, Val: value})
}

// ReadyState returns the current load state.
func (d *Document) ReadyState() host.ReadyState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OnLoadSignal registers fn for a load signal. The legacy profile has no
// signal registration and returns ErrUnsupported.
func (d *Document) OnLoadSignal(sig host.LoadSignal, fn func()) (func(), error) {
	if d.profile == ProfileLegacy {
		return nil, host.ErrUnsupported
	}
	reg := &signalReg{fn: fn}
	d.mu.Lock()
	d.signals[sig] = append(d.signals[sig], reg)
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		reg.removed = true
	}, nil
}

// ProbeLayout reports whether layout is usable yet.
func (d *Document) ProbeLayout() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.layoutReady {
		return host.ErrNotReady
	}
	return nil
}

// After runs fn once dur has elapsed.
func (d *Document) After(dur time.Duration, fn func()) func() {
	t := time.AfterFunc(dur, fn)
	return func() { t.Stop() }
}

// RequestFrame schedules fn for the next simulated animation frame.
func (d *Document) RequestFrame(fn func()) func() {
	return d.After(frameInterval, fn)
}

// LegacyEvents reports whether event registration lacks modern
// semantics.
func (d *Document) LegacyEvents() bool {
	return d.profile == ProfileLegacy
}

// ReportCapabilities returns the capability set for the document's
// profile. The document knows what it is; probing it one primitive at a
// time would only rediscover this.
func (d *Document) ReportCapabilities() host.Capabilities {
	if d.profile == ProfileLegacy {
		return host.Capabilities{
			StyleProbe:  true,
			LayoutProbe: true,
		}
	}
	return host.Capabilities{
		NativeQuery:  true,
		NativeMatch:  true,
		LoadSignals:  true,
		ModernEvents: true,
		StyleProbe:   true,
		LayoutProbe:  true,
		FrameTicks:   true,
	}
}

// FinishParsing moves a loading document to interactive: layout becomes
// usable and the primary load signal fires. It is a no-op once parsing
// has finished.
func (d *Document) FinishParsing() {
	d.mu.Lock()
	if d.state != host.ReadyLoading {
		d.mu.Unlock()
		return
	}
	d.state = host.ReadyInteractive
	d.layoutReady = true
	fns := d.liveSignalsLocked(host.SignalPrimary)
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// FinishLoad completes the document load: the state becomes complete and
// the failsafe signal fires. A document still parsing finishes parsing
// first, so the primary signal is never skipped.
func (d *Document) FinishLoad() {
	d.FinishParsing()

	d.mu.Lock()
	if d.state == host.ReadyComplete {
		d.mu.Unlock()
		return
	}
	d.state = host.ReadyComplete
	fns := d.liveSignalsLocked(host.SignalFailsafe)
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// liveSignalsLocked snapshots the live registrations for sig. Callers
// hold d.mu and invoke the result after unlocking.
func (d *Document) liveSignalsLocked(sig host.LoadSignal) []func() {
	var fns []func()
	for _, reg := range d.signals[sig] {
		if !reg.removed {
			fns = append(fns, reg.fn)
		}
	}
	return fns
}

// HTML renders the whole document back to markup.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var buf bytes.Buffer
	if err := html.Render(&buf, d.tree); err != nil {
		return "", fmt.Errorf("memdom: render: %w", err)
	}
	return buf.String(), nil
}
