// Package vtest provides a headless harness for testing trees that patch
// with transitions.
//
// A Harness wires an in-memory document, a manually driven event loop, the
// patch engine with the standard modules and the transition controller.
// Tests render successive trees and step time explicitly:
//
//	h := vtest.New(vtest.WithRules(vtest.Fade("v", 50*time.Millisecond)...))
//	h.Render(vdom.Div(vdom.Div(vdom.Class("test"), vdom.Transition(true), "foo")))
//	h.Render(vdom.Div())
//	vtest.ExpectClass(t, h.Child(0), "test v-leave v-leave-active")
//	h.Frame()
//	vtest.ExpectClass(t, h.Child(0), "test v-leave-active")
//	h.Advance(50 * time.Millisecond)
//	vtest.ExpectChildren(t, h, 0)
//
// Time only moves when the test calls Frame, Advance or Flush, so class
// sequences are asserted deterministically.
package vtest
