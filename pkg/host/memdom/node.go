package memdom

import (
	"slices"
	"strings"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/render"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

type nodeKind uint8

const (
	elementNode nodeKind = iota
	textNode
)

// Node is an element or text node owned by a Document.
type Node struct {
	doc       *Document
	kind      nodeKind
	root      bool
	tag       string
	namespace host.Namespace
	text      string

	parent   *Node
	children []*Node

	classes    []string
	attrs      map[string]string
	attrOrder  []string
	style      map[string]string
	styleOrder []string

	listeners  map[string][]*listener
	completion map[host.CompletionKind][]*listener

	// pending holds the scheduled native completion events.
	pending []host.Cancel
}

type listener struct {
	fn      host.Listener
	removed bool
}

// Tag returns the element tag, or "#text".
func (n *Node) Tag() string {
	if n.kind == textNode {
		return "#text"
	}
	return n.tag
}

// Namespace returns the element namespace.
func (n *Node) Namespace() host.Namespace {
	return n.namespace
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.kind == textNode
}

// Text returns the content of a text node.
func (n *Node) Text() string {
	return n.text
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	if n.kind == textNode {
		return n.text
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// ParentNode returns the parent, or nil.
func (n *Node) ParentNode() *Node {
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildElements returns the element children.
func (n *Node) ChildElements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == elementNode {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Classes returns the class tokens in application order.
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

// ClassName returns the class attribute value.
func (n *Node) ClassName() string {
	return strings.Join(n.classes, " ")
}

// HasClass reports whether the class token is applied.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.classes, class)
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// Style returns an inline style property, or "".
func (n *Node) Style(prop string) string {
	return n.style[prop]
}

// Listeners returns the number of live listeners for event.
func (n *Node) Listeners(event string) int {
	count := 0
	for _, l := range n.listeners[event] {
		if !l.removed {
			count++
		}
	}
	return count
}

// Dispatch fires event at n and bubbles it to the ancestors.
func (n *Node) Dispatch(event string) {
	for p := n; p != nil; p = p.parent {
		for _, l := range slices.Clone(p.listeners[event]) {
			if !l.removed {
				l.fn(n, event)
			}
		}
	}
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for _, c := range n.children {
		c.writeHTML(&b)
	}
	return b.String()
}

// OuterHTML serializes n.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	n.writeHTML(&b)
	return b.String()
}

func (n *Node) writeHTML(b *strings.Builder) {
	if n.kind == textNode {
		b.WriteString(render.EscapeHTML(n.text))
		return
	}
	b.WriteByte('<')
	b.WriteString(n.tag)
	if len(n.classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(render.EscapeAttr(n.ClassName()))
		b.WriteByte('"')
	}
	for _, key := range n.attrOrder {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(render.EscapeAttr(n.attrs[key]))
		b.WriteByte('"')
	}
	if len(n.styleOrder) > 0 {
		b.WriteString(` style="`)
		for i, prop := range n.styleOrder {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(prop)
			b.WriteString(": ")
			b.WriteString(render.EscapeAttr(n.style[prop]))
			b.WriteByte(';')
		}
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if vdom.IsVoidElement(n.tag) && len(n.children) == 0 {
		return
	}
	for _, c := range n.children {
		c.writeHTML(b)
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}

// Connected reports whether n is attached to its document root.
func (n *Node) Connected() bool {
	for p := n; p != nil; p = p.parent {
		if p.root {
			return true
		}
	}
	return false
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *Node) cancelPending() {
	for _, cancel := range n.pending {
		cancel()
	}
	n.pending = nil
}
