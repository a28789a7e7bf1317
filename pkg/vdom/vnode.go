package vdom

import (
	"strings"

	"github.com/vango-dev/reconcile/pkg/host"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <circle>, etc.
	KindText                 // Plain text node
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Reserved prop names.
const (
	PropKey        = "key"
	PropClass      = "class"
	PropStyle      = "style"
	PropTransition = "transition"
	PropShow       = "show"
)

// VNode is a tree description node.
type VNode struct {
	Kind      VKind          // Node type
	Tag       string         // Element tag name (e.g., "div")
	Props     Props          // Attributes, reserved props and event handlers
	Children  []*VNode       // Child nodes
	Key       string         // Reconciliation key
	Text      string         // For KindText
	Namespace host.Namespace // Element namespace

	// Handle is the live node this description is realized as.
	// It is set by the patch engine.
	Handle host.Node
}

// Props holds attributes, reserved props and event handlers.
type Props map[string]any

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // func() or host.Listener
}

// IsElement reports whether v is an element node.
func (v *VNode) IsElement() bool {
	return v != nil && v.Kind == KindElement
}

// Prop returns the prop value for key, or nil.
func (v *VNode) Prop(key string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	return v.Props[key]
}

// ClassName returns the class prop as a string.
func (v *VNode) ClassName() string {
	s, _ := v.Prop(PropClass).(string)
	return s
}

// Visible returns the show prop and whether the node uses visibility mode.
func (v *VNode) Visible() (visible, ok bool) {
	visible, ok = v.Prop(PropShow).(bool)
	return visible, ok
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if !v.IsElement() {
		return false
	}
	for key := range v.Props {
		if IsEventProp(key) {
			return true
		}
	}
	return false
}

// Walk calls fn for v and every descendant, parents first.
func (v *VNode) Walk(fn func(*VNode)) {
	if v == nil {
		return
	}
	fn(v)
	for _, child := range v.Children {
		child.Walk(fn)
	}
}

// KeyOf extracts the reconciliation key of a node.
func KeyOf(node *VNode) string {
	if node == nil {
		return ""
	}
	if node.Key != "" {
		return node.Key
	}
	if node.Props == nil {
		return ""
	}
	if key, ok := node.Props[PropKey].(string); ok {
		return key
	}
	return ""
}

// HasKeys returns true if any child has a key.
func HasKeys(children []*VNode) bool {
	for _, child := range children {
		if KeyOf(child) != "" {
			return true
		}
	}
	return false
}

// SameNode reports whether b can be patched in place of a: same kind, tag,
// key and namespace.
func SameNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind &&
		a.Tag == b.Tag &&
		a.Namespace == b.Namespace &&
		KeyOf(a) == KeyOf(b)
}

// IsEventProp returns true if the key is an event handler (starts with "on").
// Case-insensitive to catch onclick, ONCLICK, onClick, OnLoad, etc.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// IsReservedProp reports whether key is consumed by the engine rather than
// rendered as an attribute.
func IsReservedProp(key string) bool {
	switch key {
	case PropKey, PropClass, PropStyle, PropTransition, PropShow:
		return true
	}
	return IsEventProp(key)
}
