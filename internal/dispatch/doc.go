// Package dispatch runs backend calls off the caller's goroutine. Every call
// gets its own worker; the caller receives a Call handle it can block on with
// Resolve or chain with Then. There is no retry, batching or cancellation:
// a dispatched call always runs to completion.
package dispatch
