// Package ready detects document load completion exactly once.
//
// Host environments are unreliable about announcing readiness: the
// primary signal can fire before a listener is attached, legacy
// registration can drop it entirely, and the full-load signal arrives
// late or not at all. The Dispatcher therefore arms several redundant
// sources at once:
//
//   - the current ready state, checked synchronously at arm time
//   - the host's primary completion signal
//   - the host's late full-load signal
//   - a layout readiness poll, on hosts with legacy event registration
//   - a deadline, so a silent host cannot wedge the latch forever
//
// The first source to arrive fires the latch; the others are cancelled.
// Listeners run on the dispatch goroutine in registration order, each
// exactly once, and registrations after the fire run on the next queue
// turn.
package ready
