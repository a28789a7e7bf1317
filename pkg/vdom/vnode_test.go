package vdom

import (
	"maps"
	"testing"

	"github.com/vango-dev/reconcile/pkg/host"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKeyOf(t *testing.T) {
	if got := KeyOf(nil); got != "" {
		t.Errorf("KeyOf(nil) = %q", got)
	}
	if got := KeyOf(Li(Key(7))); got != "7" {
		t.Errorf("KeyOf(Li(Key(7))) = %q, want 7", got)
	}
	n := &VNode{Kind: KindElement, Props: Props{"key": "p"}}
	if got := KeyOf(n); got != "p" {
		t.Errorf("KeyOf(props key) = %q, want p", got)
	}
}

func TestHasKeys(t *testing.T) {
	if HasKeys([]*VNode{Li(), Li()}) {
		t.Error("unkeyed children reported as keyed")
	}
	if !HasKeys([]*VNode{Li(), Li(Key("a"))}) {
		t.Error("mixed children should be keyed")
	}
}

func TestSameNode(t *testing.T) {
	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", Div(), Div(Class("x")), true},
		{"different tag", Div(), Span(), false},
		{"different key", Li(Key("a")), Li(Key("b")), false},
		{"same key", Li(Key("a")), Li(Key("a"), Text("changed")), true},
		{"text nodes", Text("a"), Text("b"), true},
		{"text vs element", Text("a"), Div(), false},
		{"nil", nil, Div(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameNode(tt.a, tt.b); got != tt.want {
				t.Errorf("SameNode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSVGNamespaceInheritance(t *testing.T) {
	tree := SVG(Circle(Prop("r", 10)), G(Path()))
	if tree.Namespace != host.NamespaceSVG {
		t.Fatalf("svg namespace = %v", tree.Namespace)
	}
	tree.Walk(func(n *VNode) {
		if n.IsElement() && n.Namespace != host.NamespaceSVG {
			t.Errorf("<%s> namespace = %v, want svg", n.Tag, n.Namespace)
		}
	})
	if Div().Namespace != host.NamespaceHTML {
		t.Error("div should be html")
	}
}

func TestVisible(t *testing.T) {
	if _, ok := Div().Visible(); ok {
		t.Error("plain div should not be in visibility mode")
	}
	visible, ok := Div(Show(false)).Visible()
	if !ok || visible {
		t.Errorf("Visible() = %v, %v; want false, true", visible, ok)
	}
}

func TestIsReservedProp(t *testing.T) {
	for _, key := range []string{"key", "class", "style", "transition", "show", "onclick", "OnLoad"} {
		if !IsReservedProp(key) {
			t.Errorf("%q should be reserved", key)
		}
	}
	for _, key := range []string{"id", "data-x", "on"} {
		if IsReservedProp(key) {
			t.Errorf("%q should not be reserved", key)
		}
	}
}

func TestPropsEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{"a", "a", true},
		{"a", "b", false},
		{1, 1, true},
		{1, int64(1), false},
		{true, true, true},
		{nil, nil, true},
		{map[string]string{"a": "1"}, map[string]string{"a": "1"}, true},
		{map[string]string{"a": "1"}, map[string]string{"a": "2"}, false},
	}
	for _, tt := range tests {
		if got := PropsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("PropsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPropString(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{42, "42"},
		{int64(-3), "-3"},
		{1.5, "1.5"},
	}
	for _, tt := range tests {
		if got := PropString(tt.v); got != tt.want {
			t.Errorf("PropString(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParseStyle(t *testing.T) {
	got := ParseStyle(" color : red ;margin:0 auto;;bogus")
	want := map[string]string{"color": "red", "margin": "0 auto"}
	if !maps.Equal(got, want) {
		t.Errorf("ParseStyle = %v, want %v", got, want)
	}
	if ParseStyle(42) != nil {
		t.Error("unknown style value should yield nil")
	}
	m := map[string]string{"top": "0"}
	if !maps.Equal(ParseStyle(m), m) {
		t.Error("map style should pass through")
	}
}
