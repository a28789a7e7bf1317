// Package transition runs enter/leave effects for nodes inserted into and
// removed from the presentation tree.
//
// A node opts in with the transition prop (see vdom.Transition). The prop is
// normalized once into a Spec, a registry name or an inline Definition, and
// resolved into a canonical Descriptor before any run starts.
//
// The Controller is a patch.Module. For every live node it keeps at most one
// run, entering or leaving, identified by a monotonically increasing run ID.
// An enter run applies the enter and enter-active classes before the node is
// inserted, drops the enter class on the next frame, and removes the active
// class once completion is detected. A leave run is symmetric and holds the
// engine's removal open until it completes. Starting a run in the opposite
// direction preempts the current one: its cancelled hook runs, its classes
// are stripped, and any completion signal it armed is ignored from then on.
//
// Completion is detected by exactly one of an explicit duration, the
// native transitionend/animationend events of the node (guarded by a
// safety timer), or the done callback passed to an explicit-callback hook.
//
// Nodes carrying the show prop are in visibility mode: leaving sets
// display: none instead of detaching, entering clears it.
package transition
