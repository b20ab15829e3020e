// Package fetch issues HTTP requests with success and failure callbacks
// delivered on the document's dispatch goroutine.
//
// The surface is deliberately small: one request, one URL, one callback
// pair. Only a 200 reply counts as success; every other status and every
// transport error goes to OnFailure, or to the debug log when no failure
// listener was supplied. There are no retries, no redirects beyond what
// the HTTP client does on its own, and no cancellation.
package fetch
