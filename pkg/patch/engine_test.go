package patch

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/loop"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// recorder logs every hook it receives.
type recorder struct {
	name string
	log  *[]string
}

func label(v *vdom.VNode) string {
	if key := vdom.KeyOf(v); key != "" {
		return v.Tag + "#" + key
	}
	return v.Tag
}

func (r recorder) Name() string { return r.name }

func (r recorder) Create(v *vdom.VNode, mount bool) {
	*r.log = append(*r.log, fmt.Sprintf("%s.create %s mount=%t", r.name, label(v), mount))
}

func (r recorder) Update(prev, next *vdom.VNode) {
	*r.log = append(*r.log, fmt.Sprintf("%s.update %s", r.name, label(next)))
}

func (r recorder) Destroy(v *vdom.VNode) {
	*r.log = append(*r.log, fmt.Sprintf("%s.destroy %s", r.name, label(v)))
}

type inserter struct{ recorder }

func (r inserter) Insert(v *vdom.VNode, mount bool) {
	*r.log = append(*r.log, fmt.Sprintf("%s.insert %s", r.name, label(v)))
}

// holder holds removals open until released.
type holder struct {
	recorder
	pending map[string]func()
}

func (h *holder) Remove(v *vdom.VNode, finalize func()) {
	*h.log = append(*h.log, fmt.Sprintf("%s.remove %s", h.name, label(v)))
	h.pending[label(v)] = finalize
}

type fixture struct {
	doc    *memdom.Document
	engine *Engine
	root   host.Node
	log    []string
	stats  []Stats
}

func newFixture(t *testing.T, modules ...func(*[]string) Module) *fixture {
	t.Helper()
	f := &fixture{}
	f.doc = memdom.New(loop.NewVirtual(0))
	var ms []Module
	for _, m := range modules {
		ms = append(ms, m(&f.log))
	}
	f.engine = New(f.doc, ms, WithObserver(ObserverFunc(func(_ time.Duration, s Stats) {
		f.stats = append(f.stats, s)
	})))
	f.root = f.doc.CreateElement("main", host.NamespaceHTML)
	f.doc.InsertBefore(f.doc.Body(), f.root, nil)
	return f
}

func (f *fixture) html() string {
	return f.root.(*memdom.Node).InnerHTML()
}

func plain(name string) func(*[]string) Module {
	return func(log *[]string) Module { return recorder{name: name, log: log} }
}

func withInsert(name string) func(*[]string) Module {
	return func(log *[]string) Module { return inserter{recorder{name: name, log: log}} }
}

func list(keys ...string) *vdom.VNode {
	items := make([]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Li(vdom.Key(k), vdom.Text(k)))
	}
	return vdom.Ul(items...)
}

func TestPatchMountCreatesTree(t *testing.T) {
	f := newFixture(t)
	tree := vdom.Div(vdom.Class("test"), vdom.Span(vdom.Text("foo")), vdom.Text("bar"))

	handle := f.engine.Patch(nil, tree, f.root, nil)

	require.NotNil(t, handle)
	assert.Equal(t, handle, tree.Handle)
	assert.NotNil(t, tree.Children[0].Handle)
	assert.NotNil(t, tree.Children[1].Handle)
	assert.Equal(t, `<div><span>foo</span>bar</div>`, f.html(), "class is a module concern")
	require.Len(t, f.stats, 1)
	assert.Equal(t, 4, f.stats[0].Creates)
}

func TestPatchHookOrder(t *testing.T) {
	f := newFixture(t, plain("attrs"), withInsert("transition"))
	tree := vdom.Div(vdom.Key("root"), vdom.P(vdom.Key("child")))

	f.engine.Patch(nil, tree, f.root, nil)
	assert.Equal(t, []string{
		"attrs.create p#child mount=true",
		"transition.create p#child mount=true",
		"attrs.create div#root mount=true",
		"transition.create div#root mount=true",
		"transition.insert p#child",
		"transition.insert div#root",
	}, f.log)

	f.log = nil
	next := vdom.Div(vdom.Key("root"), vdom.P(vdom.Key("child")))
	f.engine.Patch(tree, next, f.root, nil)
	assert.Equal(t, []string{
		"attrs.update p#child",
		"transition.update p#child",
		"attrs.update div#root",
		"transition.update div#root",
	}, f.log, "children update before their parent")
}

func TestPatchInsertHooksRunAfterAttach(t *testing.T) {
	f := newFixture(t)
	var attached []bool
	ins := &attachProbe{backend: f.doc, seen: &attached}
	f.engine = New(f.doc, []Module{ins})

	f.engine.Patch(nil, vdom.Div(vdom.Span()), f.root, nil)
	assert.Equal(t, []bool{true, true}, attached)
}

type attachProbe struct {
	backend host.Backend
	seen    *[]bool
}

func (a *attachProbe) Name() string             { return "probe" }
func (a *attachProbe) Create(*vdom.VNode, bool) {}
func (a *attachProbe) Update(_, _ *vdom.VNode)  {}
func (a *attachProbe) Destroy(*vdom.VNode)      {}

func (a *attachProbe) Insert(v *vdom.VNode, _ bool) {
	*a.seen = append(*a.seen, v.Handle.(*memdom.Node).Connected())
}

func TestPatchMountFlagOnlyOnInitialRender(t *testing.T) {
	f := newFixture(t, plain("m"))
	tree := vdom.Div()
	f.engine.Patch(nil, tree, f.root, nil)
	f.log = nil

	next := vdom.Div(vdom.Span())
	f.engine.Patch(tree, next, f.root, nil)
	assert.Contains(t, f.log, "m.create span mount=false")
}

func TestPatchSamePointerIsNoop(t *testing.T) {
	f := newFixture(t, withInsert("m"))
	tree := list("a", "b", "c")
	f.engine.Patch(nil, tree, f.root, nil)
	f.log = nil
	f.doc.ResetMutations()

	handle := f.engine.Patch(tree, tree, f.root, nil)
	assert.Equal(t, tree.Handle, handle)
	assert.Zero(t, f.doc.Mutations())
	assert.Empty(t, f.log)
}

func TestPatchEqualTreeMakesNoMutations(t *testing.T) {
	f := newFixture(t)
	tree := list("a", "b", "c")
	f.engine.Patch(nil, tree, f.root, nil)
	f.doc.ResetMutations()

	f.engine.Patch(tree, list("a", "b", "c"), f.root, nil)
	assert.Zero(t, f.doc.Mutations())
}

func TestPatchTextUpdate(t *testing.T) {
	f := newFixture(t)
	tree := vdom.P(vdom.Text("a"))
	f.engine.Patch(nil, tree, f.root, nil)
	textHandle := tree.Children[0].Handle

	next := vdom.P(vdom.Text("b"))
	f.engine.Patch(tree, next, f.root, nil)
	assert.Equal(t, textHandle, next.Children[0].Handle)
	assert.Equal(t, "<p>b</p>", f.html())
}

func TestPatchIdentityChangeReplacesInPlace(t *testing.T) {
	f := newFixture(t, plain("m"))
	f.engine.Patch(nil, vdom.Section(), f.root, nil)
	tree := vdom.Div(vdom.Text("1"))
	f.engine.Patch(nil, tree, f.root, nil)
	f.log = nil

	next := vdom.P(vdom.Text("2"))
	f.engine.Patch(tree, next, nil, nil)

	assert.Equal(t, "<section></section><p>2</p>", f.html())
	assert.Nil(t, tree.Handle)
	assert.Equal(t, []string{"m.create p mount=false", "m.destroy div"}, f.log)
}

func TestPatchRemoveWithoutRemoversDetachesImmediately(t *testing.T) {
	f := newFixture(t, plain("m"))
	tree := vdom.Div(vdom.Span())
	f.engine.Patch(nil, tree, f.root, nil)
	f.log = nil

	assert.Nil(t, f.engine.Patch(tree, nil, f.root, nil))
	assert.Empty(t, f.html())
	assert.Equal(t, []string{"m.destroy div", "m.destroy span"}, f.log)
}

func TestPatchDeferredRemoval(t *testing.T) {
	f := &fixture{}
	f.doc = memdom.New(loop.NewVirtual(0))
	h1 := &holder{recorder: recorder{name: "t1", log: &f.log}, pending: map[string]func(){}}
	h2 := &holder{recorder: recorder{name: "t2", log: &f.log}, pending: map[string]func(){}}
	f.engine = New(f.doc, []Module{h1, h2})
	f.root = f.doc.CreateElement("main", host.NamespaceHTML)

	tree := vdom.Div(vdom.Key("a"))
	f.engine.Patch(nil, tree, f.root, nil)
	handle := tree.Handle
	f.log = nil

	f.engine.Patch(tree, nil, f.root, nil)
	assert.Equal(t, []string{"t1.remove div#a", "t2.remove div#a", "t1.destroy div#a", "t2.destroy div#a"}, f.log)
	assert.Equal(t, f.root, f.doc.Parent(handle), "removal held open")

	h1.pending["div#a"]()
	assert.Equal(t, f.root, f.doc.Parent(handle), "waits for every remover")

	h2.pending["div#a"]()
	assert.Nil(t, f.doc.Parent(handle))
	assert.Nil(t, tree.Handle)

	assertViolation(t, "E103", func() { h2.pending["div#a"]() })
}

func TestPatchRemovalCascadesToDescendants(t *testing.T) {
	f := &fixture{}
	f.doc = memdom.New(loop.NewVirtual(0))
	h := &holder{recorder: recorder{name: "t", log: &f.log}, pending: map[string]func(){}}
	f.engine = New(f.doc, []Module{h})
	f.root = f.doc.CreateElement("main", host.NamespaceHTML)

	grandchild := vdom.Span(vdom.Key("gc"), vdom.Transition("fade"))
	tree := vdom.Div(vdom.Key("root"), vdom.P(grandchild))
	f.engine.Patch(nil, tree, f.root, nil)
	f.log = nil

	f.engine.Patch(tree, nil, f.root, nil)
	assert.Equal(t, []string{"t.remove div#root", "t.destroy div#root", "t.destroy p", "t.destroy span#gc"}, f.log)
	assert.NotContains(t, f.log, "t.remove span#gc")
}

func TestPatchMissingHandlePanics(t *testing.T) {
	f := newFixture(t)
	stale := vdom.Div()
	assertViolation(t, "E100", func() {
		f.engine.Patch(stale, vdom.Div(), f.root, nil)
	})
}

func TestPatchDuplicateKeysPanic(t *testing.T) {
	f := newFixture(t)
	assertViolation(t, "E101", func() {
		f.engine.Patch(nil, list("a", "b", "a"), f.root, nil)
	})

	tree := list("a", "b")
	f.engine.Patch(nil, tree, f.root, nil)
	assertViolation(t, "E101", func() {
		f.engine.Patch(tree, list("b", "b"), f.root, nil)
	})
}

func assertViolation(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(*errors.Error)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, code, err.Code)
	}()
	fn()
}
