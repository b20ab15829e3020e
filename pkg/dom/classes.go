package dom

import (
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/strutil"
)

// Class operations read and write the element's class attribute through
// the host; the token arithmetic itself lives in strutil. An empty class
// name or nil element is a silent no-op throughout.

// HasClass reports whether n carries the named class.
func (d *Document) HasClass(n host.Node, class string) bool {
	if n == nil || class == "" {
		return false
	}
	return strutil.HasToken(d.env.Attr(n, "class"), class)
}

// AddClass adds the named class to n unless already present.
func (d *Document) AddClass(n host.Node, class string) {
	if n == nil || class == "" {
		return
	}
	d.env.SetAttr(n, "class", strutil.AddToken(d.env.Attr(n, "class"), class))
}

// RemoveClass removes every occurrence of the named class from n.
func (d *Document) RemoveClass(n host.Node, class string) {
	if n == nil || class == "" {
		return
	}
	d.env.SetAttr(n, "class", strutil.RemoveToken(d.env.Attr(n, "class"), class))
}

// ToggleClass removes the named class when present, adds it otherwise.
func (d *Document) ToggleClass(n host.Node, class string) {
	if n == nil || class == "" {
		return
	}
	d.env.SetAttr(n, "class", strutil.ToggleToken(d.env.Attr(n, "class"), class))
}

// SetClass adds or removes the named class according to on.
func (d *Document) SetClass(n host.Node, class string, on bool) {
	if n == nil || class == "" {
		return
	}
	d.env.SetAttr(n, "class", strutil.SetToken(d.env.Attr(n, "class"), class, on))
}
