package memdom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/mote-dev/mote/pkg/host"
)

// Node is a handle to one element of a Document.
type Node struct {
	doc *Document
	n   *html.Node
}

// SameAs reports whether other refers to the same element.
func (n *Node) SameAs(other host.Node) bool {
	o, ok := other.(*Node)
	return ok && o != nil && o.n == n.n
}

// Tag returns the element's tag name.
func (n *Node) Tag() string { return n.n.Data }

// wrap returns a handle for hn, or nil for a nil element.
func (d *Document) wrap(hn *html.Node) host.Node {
	if hn == nil {
		return nil
	}
	return &Node{doc: d, n: hn}
}

// unwrap recovers the underlying element from a handle this document
// issued. Foreign or nil handles unwrap to nil.
func (d *Document) unwrap(n host.Node) *html.Node {
	mn, ok := n.(*Node)
	if !ok || mn == nil || mn.doc != d {
		return nil
	}
	return mn.n
}

// Find returns the first element matching sel in document order, or nil.
// It always uses the embedded selector engine regardless of profile:
// tests need handles to elements even on documents that deny native
// queries.
func (d *Document) Find(sel string) host.Node {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wrap(s.MatchFirst(d.tree))
}

// WalkElements visits every element under root in document order until
// fn returns false. A nil root walks the whole document.
func (d *Document) WalkElements(root host.Node, fn func(host.Node) bool) {
	hr := d.unwrap(root)
	if hr == nil {
		hr = d.root
	}
	walkElements(hr, func(hn *html.Node) bool {
		return fn(d.wrap(hn))
	})
}

// walkElements visits the element descendants of root, pre-order. The
// root itself is not visited.
func walkElements(root *html.Node, fn func(*html.Node) bool) bool {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if !fn(c) {
				return false
			}
		}
		if !walkElements(c, fn) {
			return false
		}
	}
	return true
}
