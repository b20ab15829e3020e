package bridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session and server error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("bridge: session closed")

	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("bridge: session not found")

	// ErrNoConnection is returned when an op is issued while the browser is detached.
	ErrNoConnection = errors.New("bridge: no connection")

	// ErrOpTimeout is returned when the browser does not reply to an op in time.
	ErrOpTimeout = errors.New("bridge: op timed out")

	// ErrOpFailed is returned when the browser reports an op failure.
	ErrOpFailed = errors.New("bridge: op failed")

	// ErrUnknownRef is returned when the browser no longer knows a node reference.
	ErrUnknownRef = errors.New("bridge: unknown node reference")

	// ErrEventQueueFull is returned when the event queue is full and an event is dropped.
	ErrEventQueueFull = errors.New("bridge: event queue full")

	// ErrMaxSessionsReached is returned when the maximum number of sessions is reached.
	ErrMaxSessionsReached = errors.New("bridge: max sessions reached")

	// ErrInvalidHandshake is returned when the WebSocket handshake fails.
	ErrInvalidHandshake = errors.New("bridge: invalid handshake")
)

// OpError wraps an op failure with session and op context for debugging.
type OpError struct {
	SessionID string
	Op        string // op code name
	Detail    string // browser-reported detail, if any
	Err       error  // underlying sentinel
}

// Error returns the error message with session context.
func (e *OpError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("bridge: session %s: %s: %v", e.SessionID, e.Op, e.Err)
	}
	return fmt.Sprintf("bridge: session %s: %s: %v: %s", e.SessionID, e.Op, e.Err, e.Detail)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *OpError) Unwrap() error {
	return e.Err
}
