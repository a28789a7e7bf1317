package vdom

import "github.com/vango-dev/reconcile/pkg/host"

// IsVoidElement reports whether tag is an HTML void element, one that
// serializes without a closing tag.
func IsVoidElement(tag string) bool {
	switch tag {
	case "area", "base", "br", "col", "embed", "hr", "img",
		"input", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// El creates an element with an arbitrary tag.
//
// Arguments may be Attr, []Attr, EventHandler, or any child form accepted
// by Fragment. Nils are ignored so conditional attributes and children can
// be passed inline. An svg element puts its subtree in the SVG namespace.
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props, len(args)),
		Children: make([]*VNode, 0, len(args)),
	}

	for _, arg := range args {
		var ok bool
		if node.Children, ok = appendChild(node.Children, arg); ok {
			continue
		}
		switch v := arg.(type) {
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case EventHandler:
			node.Props[v.Event] = v.Handler
		}
	}

	if tag == "svg" {
		inheritNamespace(node, host.NamespaceSVG)
	}
	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if s, ok := a.Value.(string); ok && a.Key == PropKey {
		v.Key = s
	}
	v.Props[a.Key] = a.Value
}

// inheritNamespace sets ns on node and its element descendants, stopping
// below foreignObject whose content is HTML again.
func inheritNamespace(node *VNode, ns host.Namespace) {
	node.Namespace = ns
	if node.Tag == "foreignObject" {
		return
	}
	for _, child := range node.Children {
		if child.IsElement() {
			inheritNamespace(child, ns)
		}
	}
}

func Div(args ...any) *VNode     { return El("div", args...) }
func Span(args ...any) *VNode    { return El("span", args...) }
func P(args ...any) *VNode       { return El("p", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func Ul(args ...any) *VNode      { return El("ul", args...) }
func Ol(args ...any) *VNode      { return El("ol", args...) }
func Li(args ...any) *VNode      { return El("li", args...) }
func Button(args ...any) *VNode  { return El("button", args...) }
func Input(args ...any) *VNode   { return El("input", args...) }
func A(args ...any) *VNode       { return El("a", args...) }
func Img(args ...any) *VNode     { return El("img", args...) }

// SVG elements. Build them inside SVG so they pick up its namespace.

func SVG(args ...any) *VNode    { return El("svg", args...) }
func Circle(args ...any) *VNode { return El("circle", args...) }
func Rect(args ...any) *VNode   { return El("rect", args...) }
func G(args ...any) *VNode      { return El("g", args...) }
func Path(args ...any) *VNode   { return El("path", args...) }
