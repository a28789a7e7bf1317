// Package memdom is a headless, in-memory implementation of host.Backend.
//
// It keeps a real tree of elements and text nodes with ordered class lists,
// attributes and inline style, and can serialize itself as HTML. A Document
// carries a stylesheet of per-class timing rules; ComputedTiming merges the
// rules of the classes currently applied, and the document emits native
// transitionend/animationend events through its scheduler when a timed
// class set stays applied to an attached node for the full duration.
//
// memdom is the backend used by the test harness, the scenario runner and
// the mirror server.
package memdom
