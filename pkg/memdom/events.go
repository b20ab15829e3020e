package memdom

import (
	"fmt"

	"github.com/mote-dev/mote/pkg/host"
)

// Event is a synthetic host event.
type Event struct {
	typ    string
	target host.Node
}

// Type returns the event name.
func (e *Event) Type() string { return e.typ }

// Target returns the element the event originated on.
func (e *Event) Target() host.Node { return e.target }

type listenerReg struct {
	fn      func(host.Event)
	removed bool
}

// Bubbles reports whether the named event propagates to ancestors.
// Events are assumed to bubble unless known otherwise.
func (d *Document) Bubbles(event string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.nonBubbling[event]
}

// SetBubbles overrides propagation for the named event.
func (d *Document) SetBubbles(event string, bubbles bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if bubbles {
		delete(d.nonBubbling, event)
	} else {
		d.nonBubbling[event] = true
	}
}

// Listen registers fn for the named event on n.
func (d *Document) Listen(n host.Node, event string, fn func(host.Event)) (func(), error) {
	hn := d.unwrap(n)
	if hn == nil {
		return nil, fmt.Errorf("memdom: listen on foreign node")
	}
	reg := &listenerReg{fn: fn}
	d.mu.Lock()
	if d.listeners[hn] == nil {
		d.listeners[hn] = make(map[string][]*listenerReg)
	}
	d.listeners[hn][event] = append(d.listeners[hn][event], reg)
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		reg.removed = true
	}, nil
}

// DispatchEvent fires a synthetic event on target and, when the event
// type bubbles, on each ancestor in turn. Listeners run synchronously on
// the calling goroutine, outside the document lock; removals during
// dispatch take effect from the next event on.
func (d *Document) DispatchEvent(target host.Node, event string) {
	ht := d.unwrap(target)
	if ht == nil {
		return
	}
	ev := &Event{typ: event, target: target}

	d.mu.Lock()
	bubbles := !d.nonBubbling[event]
	var plan []func(host.Event)
	for cur := ht; cur != nil; cur = cur.Parent {
		for _, reg := range d.listeners[cur][event] {
			if !reg.removed {
				plan = append(plan, reg.fn)
			}
		}
		if !bubbles {
			break
		}
	}
	d.mu.Unlock()

	for _, fn := range plan {
		fn(ev)
	}
}
