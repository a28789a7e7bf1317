package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/loop"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func setup(t *testing.T) (*memdom.Document, *patch.Engine, *memdom.Node) {
	t.Helper()
	doc := memdom.New(loop.NewVirtual(0))
	root := doc.CreateElement("main", host.NamespaceHTML)
	doc.InsertBefore(doc.Body(), root, nil)
	return doc, patch.New(doc, Default(doc)), root.(*memdom.Node)
}

func TestAttrs(t *testing.T) {
	doc, engine, root := setup(t)
	tree := vdom.Input(vdom.ID("name"), vdom.Type("text"), vdom.Disabled(true), vdom.Key("k"))
	engine.Patch(nil, tree, root, nil)
	assert.Equal(t, `<input disabled="" id="name" type="text">`, root.InnerHTML())

	next := vdom.Input(vdom.ID("name"), vdom.Value("x"), vdom.Disabled(false), vdom.Key("k"))
	doc.ResetMutations()
	engine.Patch(tree, next, root, nil)

	n := next.Handle.(*memdom.Node)
	_, hasType := n.Attr("type")
	_, hasDisabled := n.Attr("disabled")
	value, _ := n.Attr("value")
	assert.False(t, hasType)
	assert.False(t, hasDisabled)
	assert.Equal(t, "x", value)
	_, hasKey := n.Attr("key")
	assert.False(t, hasKey, "reserved props are not attributes")
}

func TestClassTokenDiff(t *testing.T) {
	doc, engine, root := setup(t)
	tree := vdom.Div(vdom.Class("a b"))
	engine.Patch(nil, tree, root, nil)
	h := tree.Handle
	doc.AddClass(h, "fade-enter")

	next := vdom.Div(vdom.Class("b c"))
	engine.Patch(tree, next, root, nil)
	assert.Equal(t, "b fade-enter c", h.(*memdom.Node).ClassName())
}

func TestStyle(t *testing.T) {
	tests := []struct {
		name  string
		from  any
		to    any
		want  map[string]string
		unset []string
	}{
		{
			name:  "string to map",
			from:  "color: red; opacity: 0",
			to:    map[string]string{"color": "blue"},
			want:  map[string]string{"color": "blue"},
			unset: []string{"opacity"},
		},
		{
			name: "map to string",
			from: map[string]string{"display": "block"},
			to:   "display: flex;",
			want: map[string]string{"display": "flex"},
		},
		{
			name:  "removed",
			from:  "color: red",
			to:    nil,
			unset: []string{"color"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, engine, root := setup(t)
			tree := vdom.Div(vdom.Prop(vdom.PropStyle, tt.from))
			engine.Patch(nil, tree, root, nil)
			next := vdom.Div(vdom.Prop(vdom.PropStyle, tt.to))
			engine.Patch(tree, next, root, nil)

			n := next.Handle.(*memdom.Node)
			for prop, value := range tt.want {
				assert.Equal(t, value, n.Style(prop))
			}
			for _, prop := range tt.unset {
				assert.Empty(t, n.Style(prop))
			}
		})
	}
}

func TestEventsSwapHandlerKeepsListener(t *testing.T) {
	doc, engine, root := setup(t)
	var got []string
	tree := vdom.Button(vdom.OnClick(func() { got = append(got, "first") }))
	engine.Patch(nil, tree, root, nil)
	button := tree.Handle.(*memdom.Node)
	require.Equal(t, 1, button.Listeners("click"))

	doc.ResetMutations()
	next := vdom.Button(vdom.OnClick(func() { got = append(got, "second") }))
	engine.Patch(tree, next, root, nil)
	assert.Zero(t, doc.Mutations())
	assert.Equal(t, 1, button.Listeners("click"))

	button.Dispatch("click")
	assert.Equal(t, []string{"second"}, got)

	last := vdom.Button()
	engine.Patch(next, last, root, nil)
	assert.Zero(t, button.Listeners("click"))
}

func TestEventsReleasedOnDestroy(t *testing.T) {
	_, engine, root := setup(t)
	var target host.Node
	tree := vdom.Div(vdom.Button(vdom.On("press", host.Listener(func(n host.Node, _ string) { target = n }))))
	engine.Patch(nil, tree, root, nil)
	button := tree.Children[0].Handle.(*memdom.Node)
	button.Dispatch("press")
	assert.Equal(t, tree.Children[0].Handle, target)

	engine.Patch(tree, nil, root, nil)
	assert.Zero(t, button.Listeners("press"))
}

func TestUnchangedTreeMakesNoMutations(t *testing.T) {
	doc, engine, root := setup(t)
	build := func() *vdom.VNode {
		return vdom.Div(vdom.Class("a b"), vdom.ID("x"), vdom.StyleAttr("color: red"),
			vdom.Ul(vdom.Li(vdom.Key("1"), "one"), vdom.Li(vdom.Key("2"), "two")))
	}
	tree := build()
	engine.Patch(nil, tree, root, nil)
	doc.ResetMutations()

	engine.Patch(tree, build(), root, nil)
	assert.Zero(t, doc.Mutations())
}
