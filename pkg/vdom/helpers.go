package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a text node from a format string.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// appendChild appends the node form of child to dst: *VNode as is,
// []*VNode element-wise, strings as text nodes. Nils and anything else
// are skipped. It reports whether child was a child form at all.
func appendChild(dst []*VNode, child any) ([]*VNode, bool) {
	switch v := child.(type) {
	case *VNode:
		if v != nil {
			dst = append(dst, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				dst = append(dst, c)
			}
		}
	case string:
		dst = append(dst, Text(v))
	default:
		return dst, false
	}
	return dst, true
}

// Fragment flattens children into a slice that can be passed to an element
// factory. Strings become text nodes and nils are dropped.
func Fragment(children ...any) []*VNode {
	nodes := make([]*VNode, 0, len(children))
	for _, child := range children {
		nodes, _ = appendChild(nodes, child)
	}
	return nodes
}

// If returns node when cond holds. The patch engine treats the nil it
// returns otherwise as an absent child, which is how a transition leave
// is triggered.
func If(cond bool, node *VNode) *VNode {
	if cond {
		return node
	}
	return nil
}

// When is If with a lazily built node.
func When(cond bool, build func() *VNode) *VNode {
	if !cond {
		return nil
	}
	return build()
}

// Range maps items to nodes, dropping nils. Give each node a Key so the
// patch engine can move it instead of rebuilding it when items reorder.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i := range items {
		if n := fn(items[i], i); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Keyed is Range with the key taken from keyOf and attached for the caller.
func Keyed[T any](items []T, keyOf func(T) string, fn func(item T) *VNode) []*VNode {
	return Range(items, func(item T, _ int) *VNode {
		n := fn(item)
		if n != nil {
			n.Key = keyOf(item)
		}
		return n
	})
}
