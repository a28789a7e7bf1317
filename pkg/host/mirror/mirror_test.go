package mirror_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/host/mirror"
	"github.com/vango-dev/reconcile/pkg/protocol"
	"github.com/vango-dev/reconcile/pkg/vdom"
	"github.com/vango-dev/reconcile/pkg/vtest"
)

type fixture struct {
	h       *vtest.Harness
	m       *mirror.Backend
	replica *mirror.Replica
	root    *memdom.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.h = vtest.New(
		vtest.WithRules(vtest.Fade("v", 50*time.Millisecond)...),
		vtest.WithBackend(func(b host.Backend) host.Backend {
			f.m = mirror.New(b)
			return f.m
		}),
	)
	rootID := f.m.Bind(f.h.Root)

	doc := memdom.New(nil)
	f.root = doc.CreateElement("div", host.NamespaceHTML).(*memdom.Node)
	doc.InsertBefore(doc.Body(), f.root, nil)
	f.replica = mirror.NewReplica(doc, f.root, rootID)
	return f
}

// sync ships the pending batch through the wire format and checks that the
// replica matches the source tree.
func (f *fixture) sync(t *testing.T) {
	t.Helper()
	for _, frame := range protocol.MutationFrames(f.m.Drain()) {
		wire, err := protocol.DecodeFrame(frame.Encode())
		require.NoError(t, err)
		batch, err := protocol.DecodeMutations(wire.Payload)
		require.NoError(t, err)
		require.NoError(t, f.replica.Apply(batch))
	}
	assert.Equal(t, f.h.HTML(), f.root.InnerHTML())
}

func list(keys ...string) *vdom.VNode {
	items := make([]any, 0, len(keys))
	for _, k := range keys {
		items = append(items, vdom.Li(vdom.Key(k), vdom.Class("item"), k))
	}
	return vdom.Ul(items...)
}

func TestReplicaFollowsPatches(t *testing.T) {
	f := newFixture(t)

	steps := []*vdom.VNode{
		list("a", "b", "c"),
		list("c", "a", "b"),
		list("b", "d"),
		list(),
		vdom.Div(vdom.SVG(vdom.Circle(vdom.Prop("r", "4"))), vdom.Span(vdom.Style(map[string]string{"color": "red"}), "x")),
		vdom.Div(vdom.SVG(), vdom.Span("y")),
	}
	for _, tree := range steps {
		f.h.Render(tree)
		f.sync(t)
	}
}

func TestReplicaFollowsTransitions(t *testing.T) {
	f := newFixture(t)
	view := func(ok bool) *vdom.VNode {
		return vdom.Div(vdom.If(ok, vdom.P(vdom.Transition(true), "hi")))
	}

	f.h.Render(view(false))
	f.sync(t)
	f.h.Render(view(true))
	f.sync(t)
	assert.Contains(t, f.root.InnerHTML(), "v-enter v-enter-active")

	f.h.Frame()
	f.sync(t)
	f.h.Advance(100 * time.Millisecond)
	f.sync(t)

	f.h.Render(view(false))
	f.h.Flush()
	f.sync(t)
	assert.Equal(t, "<div></div>", f.root.InnerHTML())
}

func TestDetachReleasesIDs(t *testing.T) {
	f := newFixture(t)
	f.h.Render(list("a", "b", "c"))
	live := f.m.Live()

	f.h.Render(list("a"))
	// Each removed item held an element and a text node.
	assert.Equal(t, live-4, f.m.Live())

	var detached int
	for _, m := range f.m.Drain() {
		if m.Op == protocol.OpDetach {
			detached++
		}
	}
	assert.Equal(t, 2, detached)
}

func TestListenersAreMirrored(t *testing.T) {
	f := newFixture(t)
	clicks := 0
	f.h.Render(vdom.Div(vdom.Button(vdom.OnClick(func() { clicks++ }), "go")))
	f.sync(t)

	var events []string
	f.replica.OnEvent = func(id uint64, event string) {
		btn, _ := f.replica.Node(id)
		events = append(events, btn.(*memdom.Node).Tag()+":"+event)
	}
	button := f.root.ChildElements()[0].ChildElements()[0]
	button.Dispatch("click")
	assert.Equal(t, []string{"button:click"}, events)
	assert.Zero(t, clicks, "replica events do not reach the source")

	f.h.Render(vdom.Div(vdom.Button("go")))
	ops := map[protocol.Op]int{}
	batch := f.m.Drain()
	for _, m := range batch {
		ops[m.Op]++
	}
	assert.Equal(t, 1, ops[protocol.OpUnlisten])
	require.NoError(t, f.replica.Apply(batch))

	button.Dispatch("click")
	assert.Len(t, events, 1)
}

func TestReplicaUnknownNode(t *testing.T) {
	doc := memdom.New(nil)
	root := doc.CreateElement("div", host.NamespaceHTML)
	r := mirror.NewReplica(doc, root, 1)

	err := r.Apply([]protocol.Mutation{
		{Op: protocol.OpCreateText, Node: 2, Value: "x"},
		{Op: protocol.OpInsertBefore, Parent: 1, Node: 2, Ref: 9},
	})
	require.Error(t, err)
	var coded *rerrors.Error
	require.True(t, errors.As(err, &coded))
	assert.Equal(t, "E401", coded.Code)
	assert.Contains(t, err.Error(), "#9")
}

func TestBindIsStable(t *testing.T) {
	doc := memdom.New(nil)
	m := mirror.New(doc)
	n := doc.CreateElement("div", host.NamespaceHTML)
	id := m.Bind(n)
	assert.Equal(t, id, m.Bind(n))
	got, ok := m.ID(n)
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Zero(t, m.Pending(), "binding emits nothing")
}
