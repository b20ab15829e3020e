package memdom

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"github.com/mote-dev/mote/pkg/host"
)

// styleRule is one installed probe rule: `sel { prop: value }`.
type styleRule struct {
	sel   cascadia.Selector
	prop  string
	value string
}

// InstallProbeRule adds a style rule to the document's rule store and
// returns its remover. The rule store exists for the legacy query
// strategy; it understands selectors even on profiles whose script
// surface denies them, exactly like the old hosts it stands in for.
func (d *Document) InstallProbeRule(selector, prop, value string) (func(), error) {
	s, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("memdom: probe selector %q: %w", selector, err)
	}
	rule := &styleRule{sel: s, prop: prop, value: value}
	d.mu.Lock()
	d.rules = append(d.rules, rule)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, r := range d.rules {
			if r == rule {
				d.rules = append(d.rules[:i], d.rules[i+1:]...)
				return
			}
		}
	}, nil
}

// ComputedStyle returns the value prop resolves to on n, or "" when no
// rule sets it. Rules apply in installation order and the last match
// wins; probe rules never need specificity.
func (d *Document) ComputedStyle(n host.Node, prop string) (string, error) {
	hn := d.unwrap(n)
	if hn == nil {
		return "", fmt.Errorf("memdom: computed style on foreign node")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	v := ""
	for _, r := range d.rules {
		if r.prop == prop && r.sel.Match(hn) {
			v = r.value
		}
	}
	return v, nil
}
