// Package vdom provides the tree descriptions reconciled by the patch engine.
//
// A VNode describes one node of the presentation tree: an element with a
// tag, props and children, or a text node. Descriptions are immutable per
// render; the patch engine records the realized live handle on the node it
// reconciled, so the next render can reuse it.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("list"),
//	    If(ok, Div(Class("test"), Transition("fade"), Text("foo"))),
//	    Ul(Range(items, func(it Item, _ int) *VNode {
//	        return Li(Key(it.ID), Text(it.Label))
//	    })),
//	)
//
// # Reserved props
//
// key, class, style, transition, show and the on* event props are consumed by
// the patch engine and its modules; every other prop is an attribute.
package vdom
