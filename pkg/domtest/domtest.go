// Package domtest provides test helpers for code built on mote
// documents. It wires up in-memory hosts, hands out element handles and
// asserts on document state, keeping the arrange half of DOM tests out
// of the way of the behavior under test.
package domtest

import (
	"strings"
	"testing"
	"time"

	"github.com/mote-dev/mote/pkg/dom"
	"github.com/mote-dev/mote/pkg/host"
	"github.com/mote-dev/mote/pkg/memdom"
)

// Env parses markup into an in-memory host, failing the test when the
// markup cannot be parsed.
//
// Example:
//
//	env := domtest.Env(t, `<ul><li class="row">one</li></ul>`)
func Env(t *testing.T, markup string, opts ...memdom.Option) *memdom.Document {
	t.Helper()
	env, err := memdom.New(markup, opts...)
	if err != nil {
		t.Fatalf("parse test markup: %v", err)
	}
	return env
}

// Doc builds a document over env and closes it when the test finishes.
//
// Example:
//
//	env := domtest.Env(t, markup)
//	doc := domtest.Doc(t, env)
func Doc(t *testing.T, env *memdom.Document, opts ...dom.Option) *dom.Document {
	t.Helper()
	d := dom.New(env, opts...)
	t.Cleanup(d.Close)
	return d
}

// Find returns the first element matching sel, failing the test when
// there is none.
func Find(t *testing.T, env *memdom.Document, sel string) host.Node {
	t.Helper()
	n := env.Find(sel)
	if n == nil {
		t.Fatalf("no element matches %q", sel)
	}
	return n
}

// Drain waits until everything already posted to the document's dispatch
// goroutine has run. Use it between acting on the document and asserting
// on the outcome.
func Drain(t *testing.T, d *dom.Document) {
	t.Helper()
	done := make(chan struct{})
	d.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch queue stalled")
	}
}

// ExpectClass asserts that n carries the named class.
//
// Example:
//
//	domtest.ExpectClass(t, env, row, "selected")
func ExpectClass(t *testing.T, env *memdom.Document, n host.Node, class string) {
	t.Helper()
	got := env.Attr(n, "class")
	if !hasToken(got, class) {
		t.Errorf("expected class %q, element has %q", class, got)
	}
}

// ExpectNoClass asserts that n does not carry the named class.
func ExpectNoClass(t *testing.T, env *memdom.Document, n host.Node, class string) {
	t.Helper()
	got := env.Attr(n, "class")
	if hasToken(got, class) {
		t.Errorf("expected class %q absent, element has %q", class, got)
	}
}

// ExpectAttr asserts the value of an attribute on n.
//
// Example:
//
//	domtest.ExpectAttr(t, env, row, "data-state", "open")
func ExpectAttr(t *testing.T, env *memdom.Document, n host.Node, name, want string) {
	t.Helper()
	if got := env.Attr(n, name); got != want {
		t.Errorf("attribute %s = %q, want %q", name, got, want)
	}
}

// ExpectCount asserts how many elements match sel.
//
// Example:
//
//	domtest.ExpectCount(t, doc, ".row.selected", 1)
func ExpectCount(t *testing.T, d *dom.Document, sel string, want int) {
	t.Helper()
	if got := len(d.QueryAll(sel)); got != want {
		t.Errorf("%d elements match %q, want %d", got, sel, want)
	}
}

// ExpectContains asserts that the rendered document contains expected.
//
// Example:
//
//	domtest.ExpectContains(t, env, `class="selected"`)
func ExpectContains(t *testing.T, env *memdom.Document, expected string) {
	t.Helper()
	markup, err := env.HTML()
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	if !strings.Contains(markup, expected) {
		t.Errorf("expected document to contain %q, got:\n%s", expected, truncate(markup, 500))
	}
}

// ExpectNotContains asserts that the rendered document does not contain
// unexpected.
func ExpectNotContains(t *testing.T, env *memdom.Document, unexpected string) {
	t.Helper()
	markup, err := env.HTML()
	if err != nil {
		t.Fatalf("render document: %v", err)
	}
	if strings.Contains(markup, unexpected) {
		t.Errorf("expected document to NOT contain %q, got:\n%s", unexpected, truncate(markup, 500))
	}
}

// hasToken reports whether tok appears as a whitespace-delimited token.
func hasToken(list, tok string) bool {
	for _, t := range strings.Fields(list) {
		if t == tok {
			return true
		}
	}
	return false
}

// truncate shortens s for error messages.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... (truncated)"
}
