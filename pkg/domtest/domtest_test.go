package domtest

import (
	"testing"

	"github.com/mote-dev/mote/pkg/host"
)

const markup = `<html><body>
  <ul id="list">
    <li class="row">one</li>
    <li class="row">two</li>
  </ul>
</body></html>`

func TestHelpersEndToEnd(t *testing.T) {
	env := Env(t, markup)
	doc := Doc(t, env)

	row := Find(t, env, "li.row")
	ExpectClass(t, env, row, "row")
	ExpectNoClass(t, env, row, "selected")
	ExpectCount(t, doc, ".row", 2)

	// Drive the document the way application code would and assert on
	// the outcome.
	if _, err := doc.Delegate(".row", "click", func(m host.Node, _ host.Event) {
		doc.ToggleClass(m, "selected")
	}, nil); err != nil {
		t.Fatalf("Delegate() error = %v", err)
	}

	env.DispatchEvent(row, "click")
	Drain(t, doc)

	ExpectClass(t, env, row, "selected")
	ExpectCount(t, doc, ".row.selected", 1)
	ExpectContains(t, env, `class="row selected"`)
	ExpectNotContains(t, env, "nonexistent")

	ExpectAttr(t, env, row, "class", "row selected")
}
