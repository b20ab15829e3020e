// Package bridge hosts browser sessions over WebSocket and exposes each
// connected page as a host.Env.
//
// A page loads the embedded shim (served at /mote/client.js), which dials
// /mote/ws and performs a hello exchange declaring the page URL, its
// document capabilities, and its ready state. The resulting Session
// implements host.Env, host.StyleProber, and host.CapabilityReporter: hand
// it to dom.New and the Document drives the remote page the same way it
// drives an in-memory one.
//
//	srv := bridge.New(nil)
//	go srv.Run()
//	// per connected page:
//	srv.EachSession(func(sess *bridge.Session) {
//		doc := dom.New(sess)
//		doc.Ready(func() { doc.AddClass(sess.Body(), "connected") })
//	})
//
// # Sessions and ops
//
// Document primitives become request/reply operations: the session assigns
// a sequence number, sends the op, and blocks the caller until the reply,
// the op timeout, or session close. Events, load signals, and ready-state
// changes arrive unacknowledged and are dispatched on a per-session event
// loop, never on the WebSocket read loop: a listener callback is free to
// issue ops (delegation does, for every selector test) and those ops need
// the read loop pumping replies.
//
// # Detach and resume
//
// A dropped connection detaches its session instead of closing it. The
// browser shim keeps its node-reference and listener tables for the life of
// the page, so when it reconnects with its session ID the server state is
// still valid and the session resumes; registrations and latched load
// signals survive. Sessions detached longer than Config.ResumeWindow are
// closed by the registry sweep.
package bridge
