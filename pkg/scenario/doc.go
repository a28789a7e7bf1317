// Package scenario loads and plays YAML scenario files.
//
// A scenario names a stylesheet of timed classes, transition definitions,
// a set of trees and a list of steps. Playing a scenario renders trees
// through the patch engine into an in-memory document and records HTML
// snapshots along the way.
//
//	stylesheet:
//	  fade-enter-active: {transition: 300ms}
//	  fade-leave-active: {transition: 300ms}
//	trees:
//	  open:
//	    tag: div
//	    children:
//	      - {tag: p, class: box, transition: fade, text: hello}
//	  closed:
//	    tag: div
//	steps:
//	  - render: open
//	  - render: closed
//	  - frame: 1
//	  - snapshot: leaving
//	  - advance: 300ms
//	  - snapshot: gone
//
// A Player runs steps either on a virtual clock, where frames and time
// advance instantly, or on a loop.Realtime, where they take wall-clock
// time.
package scenario
