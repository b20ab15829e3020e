package memdom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/mote-dev/mote/pkg/host"
)

// QueryAll returns the descendants of root matching sel, in document
// order. The root itself is never part of the result. The legacy profile
// has no native selector engine and returns ErrUnsupported.
func (d *Document) QueryAll(root host.Node, sel string) ([]host.Node, error) {
	if d.profile == ProfileLegacy {
		return nil, host.ErrUnsupported
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("memdom: selector %q: %w", sel, err)
	}
	hr := d.unwrap(root)
	if hr == nil {
		hr = d.root
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	var out []host.Node
	walkElements(hr, func(hn *html.Node) bool {
		if s.Match(hn) {
			out = append(out, d.wrap(hn))
		}
		return true
	})
	return out, nil
}

// Match reports whether n matches sel. The legacy profile has no native
// single-node test and returns ErrUnsupported.
func (d *Document) Match(n host.Node, sel string) (bool, error) {
	if d.profile == ProfileLegacy {
		return false, host.ErrUnsupported
	}
	hn := d.unwrap(n)
	if hn == nil {
		return false, nil
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return false, fmt.Errorf("memdom: selector %q: %w", sel, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return s.Match(hn), nil
}
