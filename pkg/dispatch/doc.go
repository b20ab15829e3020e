// Package dispatch provides the single work queue that serializes every
// mote entry point.
//
// The execution model matches a browser's single UI thread: shared state
// is never touched concurrently because there is only one place it runs.
// In Go that guarantee holds by funneling all work through one Queue
// goroutine. Component state (the ready latch, the bound
// selector strategy, listener tables) is owned by that goroutine; external
// completions such as HTTP responses, host timers, and remote frames are
// posted onto the queue before they touch state or invoke user callbacks.
//
// Posted functions run in FIFO order. A panicking function is recovered
// and logged; the queue keeps running.
package dispatch
