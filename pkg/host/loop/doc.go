// Package loop provides host.Scheduler implementations.
//
// Virtual is a deterministic scheduler driven by the caller: time only moves
// when Advance or Frame is called. It backs tests and the scenario runner.
//
// Realtime runs every callback on a single goroutine, with frames produced
// by a ticker. It backs the mirror server.
package loop
