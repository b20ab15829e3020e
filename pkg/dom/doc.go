// Package dom is the front door of the library: one Document per host
// environment, combining selector queries, class manipulation, event
// binding and delegation, readiness detection and HTTP requests behind a
// single small surface.
//
// A Document probes the host's capabilities exactly once, at
// construction, and fixes every strategy choice to that snapshot. All
// callbacks — event listeners, ready listeners, request callbacks, frame
// callbacks — are delivered on one dispatch goroutine, so application
// state touched only from callbacks needs no locking.
//
//	env, _ := memdom.New(page)
//	doc := dom.New(env)
//	defer doc.Close()
//
//	doc.Ready(func() {
//		doc.Delegate(".row", "click", func(row host.Node, _ host.Event) {
//			doc.ToggleClass(row, "selected")
//		}, nil)
//	})
package dom
