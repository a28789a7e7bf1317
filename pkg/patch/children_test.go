package patch

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func handlesByKey(tree *vdom.VNode) map[string]host.Node {
	out := make(map[string]host.Node)
	for _, child := range tree.Children {
		out[vdom.KeyOf(child)] = child.Handle
	}
	return out
}

func listHTML(keys ...string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for _, k := range keys {
		b.WriteString("<li>" + k + "</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func TestKeyedReorderings(t *testing.T) {
	tests := []struct {
		name      string
		from      []string
		to        []string
		wantMoves int
	}{
		{"unchanged", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 0},
		{"append", []string{"a", "b"}, []string{"a", "b", "c"}, 0},
		{"prepend", []string{"b", "c"}, []string{"a", "b", "c"}, 0},
		{"insert middle", []string{"a", "c"}, []string{"a", "b", "c"}, 0},
		{"remove middle", []string{"a", "b", "c"}, []string{"a", "c"}, 0},
		{"reverse", []string{"a", "b", "c", "d"}, []string{"d", "c", "b", "a"}, 3},
		{"first to last", []string{"a", "b", "c"}, []string{"b", "c", "a"}, 1},
		{"last to first", []string{"a", "b", "c"}, []string{"c", "a", "b"}, 1},
		{"swap ends", []string{"a", "b", "c", "d"}, []string{"d", "b", "c", "a"}, 2},
		{"shuffle with churn", []string{"a", "b", "c", "d", "e"}, []string{"e", "x", "c", "a", "y"}, 2},
		{"clear", []string{"a", "b"}, nil, 0},
		{"from empty", nil, []string{"a", "b"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tree := list(tt.from...)
			f.engine.Patch(nil, tree, f.root, nil)
			before := handlesByKey(tree)

			next := list(tt.to...)
			f.engine.Patch(tree, next, f.root, nil)

			assert.Equal(t, listHTML(tt.to...), f.html())
			after := handlesByKey(next)
			for key, h := range before {
				if got, ok := after[key]; ok {
					assert.True(t, h == got, "key %s kept its handle", key)
				}
			}
			require.Len(t, f.stats, 2)
			assert.Equal(t, tt.wantMoves, f.stats[1].Moves)
		})
	}
}

func TestKeyedIdentityPreservationRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := strings.Split("abcdefghij", "")

	f := newFixture(t)
	tree := list(alphabet[:5]...)
	f.engine.Patch(nil, tree, f.root, nil)

	for round := 0; round < 200; round++ {
		pool := append([]string(nil), alphabet...)
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		keys := pool[:rng.Intn(len(pool)+1)]

		before := handlesByKey(tree)
		next := list(keys...)
		f.engine.Patch(tree, next, f.root, nil)

		require.Equal(t, listHTML(keys...), f.html(), "round %d", round)
		for key, h := range handlesByKey(next) {
			if old, ok := before[key]; ok {
				require.True(t, old == h, "round %d: key %s lost its handle", round, key)
			}
		}
		tree = next
	}
}

func TestUnkeyedPositionalMatching(t *testing.T) {
	f := newFixture(t)
	tree := vdom.Div(vdom.P(vdom.Text("1")), vdom.Span(vdom.Text("2")), vdom.P(vdom.Text("3")))
	f.engine.Patch(nil, tree, f.root, nil)
	first := tree.Children[0].Handle

	next := vdom.Div(vdom.P(vdom.Text("one")), vdom.P(vdom.Text("two")))
	f.engine.Patch(tree, next, f.root, nil)

	assert.Equal(t, "<div><p>one</p><p>two</p></div>", f.html())
	assert.True(t, first == next.Children[0].Handle, "same position, same tag reuses the node")
	assert.Nil(t, tree.Children[2].Handle)
}

func TestMixedKeyedAndUnkeyedChildren(t *testing.T) {
	f := newFixture(t)
	tree := vdom.Div(vdom.Span(vdom.Key("k"), vdom.Text("k")), vdom.P(vdom.Text("plain")))
	f.engine.Patch(nil, tree, f.root, nil)
	keyed := tree.Children[0].Handle
	unkeyed := tree.Children[1].Handle

	next := vdom.Div(vdom.P(vdom.Text("plain")), vdom.Span(vdom.Key("k"), vdom.Text("k")))
	f.engine.Patch(tree, next, f.root, nil)

	assert.Equal(t, "<div><p>plain</p><span>k</span></div>", f.html())
	assert.True(t, keyed == next.Children[1].Handle)
	assert.True(t, unkeyed == next.Children[0].Handle)
}

func TestKeyedSameKeyDifferentTagIsRecreated(t *testing.T) {
	f := newFixture(t)
	tree := vdom.Div(vdom.Span(vdom.Key("a")), vdom.Span(vdom.Key("b")))
	f.engine.Patch(nil, tree, f.root, nil)
	old := tree.Children[1].Handle

	next := vdom.Div(vdom.P(vdom.Key("b")), vdom.Span(vdom.Key("a")))
	f.engine.Patch(tree, next, f.root, nil)

	assert.Equal(t, "<div><p></p><span></span></div>", f.html())
	assert.False(t, old == next.Children[0].Handle)
}
