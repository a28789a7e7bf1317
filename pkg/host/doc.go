// Package host defines the presentation-tree capabilities the patch engine
// and the transition controller depend on.
//
// A backend realizes tree descriptions as live nodes: a browser DOM bridge,
// the headless memdom package used by tests and the CLI, or the mirror
// decorator that streams every mutation to remote clients. Any type that
// implements Backend and Scheduler is sufficient.
//
// All methods are called from a single goroutine. Backends and schedulers
// never block; waiting is expressed as frame callbacks, timers and
// completion events delivered back on the same loop.
package host
