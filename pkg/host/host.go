package host

import "time"

// Node is an opaque live handle created by a Backend.
// Handles must be comparable; the transition controller keys per-node state by them.
type Node any

// Namespace selects the element namespace used when creating elements.
type Namespace uint8

const (
	NamespaceHTML Namespace = iota
	NamespaceSVG
)

// String returns the string representation of the Namespace.
func (ns Namespace) String() string {
	switch ns {
	case NamespaceHTML:
		return "html"
	case NamespaceSVG:
		return "svg"
	default:
		return "unknown"
	}
}

// CompletionKind is the kind of native "finished" event a node can emit.
type CompletionKind uint8

const (
	CompletionNone CompletionKind = iota
	CompletionTransition
	CompletionAnimation
)

// String returns the DOM event name for the kind.
func (k CompletionKind) String() string {
	switch k {
	case CompletionTransition:
		return "transitionend"
	case CompletionAnimation:
		return "animationend"
	default:
		return "none"
	}
}

// Cancel releases a scheduled callback or listener. Calling it more than
// once, or after the callback ran, is a no-op.
type Cancel func()

// Listener receives DOM-style events. The node is the event target.
type Listener func(target Node, event string)

// Backend is the set of presentation-tree primitives.
type Backend interface {
	// CreateElement creates a detached element.
	CreateElement(tag string, ns Namespace) Node

	// CreateText creates a detached text node.
	CreateText(text string) Node

	// SetText replaces the content of a text node.
	SetText(node Node, text string)

	// InsertBefore inserts child into parent before ref. A nil ref appends.
	// Inserting an attached child moves it.
	InsertBefore(parent, child, ref Node)

	// Detach removes node from its parent. Detached nodes are left alone.
	Detach(node Node)

	// Parent returns the parent of node, or nil.
	Parent(node Node) Node

	// NextSibling returns the sibling after node, or nil.
	NextSibling(node Node) Node

	SetAttr(node Node, key, value string)
	RemoveAttr(node Node, key string)

	// AddClass adds a single class token. Adding a present token is a no-op.
	AddClass(node Node, class string)

	// RemoveClass removes a single class token.
	RemoveClass(node Node, class string)

	SetStyle(node Node, prop, value string)
	RemoveStyle(node Node, prop string)

	AddListener(node Node, event string, fn Listener) Cancel

	// ComputedTiming reports the transition and animation timing that
	// currently applies to node.
	ComputedTiming(node Node) Timing

	// OnCompletion registers fn for native completion events of kind that
	// reach node, including ones bubbling up from descendants.
	OnCompletion(node Node, kind CompletionKind, fn Listener) Cancel
}

// Scheduler is the host event loop.
type Scheduler interface {
	// RequestFrame runs fn at the next frame boundary, never synchronously.
	RequestFrame(fn func()) Cancel

	// SetTimer runs fn once after d.
	SetTimer(d time.Duration, fn func()) Cancel

	// Now returns the loop's current time.
	Now() time.Time
}
