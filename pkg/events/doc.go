// Package events binds listeners to host elements, directly or through
// delegation.
//
// On attaches a listener to one element. Delegate attaches a single
// listener to a container and routes events to it whenever the
// originating element matches a selector, so elements can come and go
// without rebinding. Both return a Handle whose Remove detaches the
// registration; only the first Remove has any effect.
//
// Delegation relies on the host propagating events to ancestors. For
// event types that do not bubble, Delegate degrades to binding each
// element matching the selector at call time, which does not cover
// elements that appear later.
package events
