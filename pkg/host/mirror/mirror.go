// Package mirror records the mutations applied to a host.Backend as wire
// mutations, and replays them onto another backend.
package mirror

import (
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

// Backend decorates a host.Backend. Every tree mutation is forwarded to the
// wrapped backend and appended to a pending batch; queries pass through.
// It is not safe for concurrent use.
type Backend struct {
	host.Backend

	ids      map[host.Node]uint64
	parents  map[host.Node]host.Node
	children map[host.Node]map[host.Node]struct{}
	lastID   uint64
	pending  []protocol.Mutation
}

var _ host.Backend = (*Backend)(nil)

// New wraps inner.
func New(inner host.Backend) *Backend {
	return &Backend{
		Backend:  inner,
		ids:      make(map[host.Node]uint64),
		parents:  make(map[host.Node]host.Node),
		children: make(map[host.Node]map[host.Node]struct{}),
	}
}

// Bind assigns an ID to a node created outside the mirror, such as the
// container a tree is mounted into. Binding a known node returns its ID.
func (b *Backend) Bind(n host.Node) uint64 {
	if id, ok := b.ids[n]; ok {
		return id
	}
	b.lastID++
	b.ids[n] = b.lastID
	return b.lastID
}

// ID returns the ID of a live node.
func (b *Backend) ID(n host.Node) (uint64, bool) {
	id, ok := b.ids[n]
	return id, ok
}

// Live returns the number of nodes with an ID.
func (b *Backend) Live() int {
	return len(b.ids)
}

// Pending returns the number of mutations not drained yet.
func (b *Backend) Pending() int {
	return len(b.pending)
}

// Drain returns the pending batch and starts a new one.
func (b *Backend) Drain() []protocol.Mutation {
	batch := b.pending
	b.pending = nil
	return batch
}

func (b *Backend) emit(m protocol.Mutation) {
	b.pending = append(b.pending, m)
}

func (b *Backend) ref(n host.Node) uint64 {
	if n == nil {
		return 0
	}
	return b.Bind(n)
}

// CreateElement implements host.Backend.
func (b *Backend) CreateElement(tag string, ns host.Namespace) host.Node {
	n := b.Backend.CreateElement(tag, ns)
	b.emit(protocol.Mutation{Op: protocol.OpCreateElement, Node: b.Bind(n), Name: tag, Value: ns.String()})
	return n
}

// CreateText implements host.Backend.
func (b *Backend) CreateText(text string) host.Node {
	n := b.Backend.CreateText(text)
	b.emit(protocol.Mutation{Op: protocol.OpCreateText, Node: b.Bind(n), Value: text})
	return n
}

// SetText implements host.Backend.
func (b *Backend) SetText(n host.Node, text string) {
	b.Backend.SetText(n, text)
	b.emit(protocol.Mutation{Op: protocol.OpSetText, Node: b.ref(n), Value: text})
}

// InsertBefore implements host.Backend.
func (b *Backend) InsertBefore(parent, child, ref host.Node) {
	b.Backend.InsertBefore(parent, child, ref)
	if old, ok := b.parents[child]; ok {
		delete(b.children[old], child)
	}
	b.parents[child] = parent
	kids := b.children[parent]
	if kids == nil {
		kids = make(map[host.Node]struct{})
		b.children[parent] = kids
	}
	kids[child] = struct{}{}
	b.emit(protocol.Mutation{Op: protocol.OpInsertBefore, Parent: b.ref(parent), Node: b.ref(child), Ref: b.ref(ref)})
}

// Detach implements host.Backend. The IDs of the detached subtree are
// released.
func (b *Backend) Detach(n host.Node) {
	b.Backend.Detach(n)
	id, ok := b.ids[n]
	if !ok {
		return
	}
	b.emit(protocol.Mutation{Op: protocol.OpDetach, Node: id})
	if parent, ok := b.parents[n]; ok {
		delete(b.children[parent], n)
	}
	b.forget(n)
}

func (b *Backend) forget(n host.Node) {
	for child := range b.children[n] {
		b.forget(child)
	}
	delete(b.children, n)
	delete(b.parents, n)
	delete(b.ids, n)
}

// SetAttr implements host.Backend.
func (b *Backend) SetAttr(n host.Node, key, value string) {
	b.Backend.SetAttr(n, key, value)
	b.emit(protocol.Mutation{Op: protocol.OpSetAttr, Node: b.ref(n), Name: key, Value: value})
}

// RemoveAttr implements host.Backend.
func (b *Backend) RemoveAttr(n host.Node, key string) {
	b.Backend.RemoveAttr(n, key)
	b.emit(protocol.Mutation{Op: protocol.OpRemoveAttr, Node: b.ref(n), Name: key})
}

// AddClass implements host.Backend.
func (b *Backend) AddClass(n host.Node, class string) {
	b.Backend.AddClass(n, class)
	b.emit(protocol.Mutation{Op: protocol.OpAddClass, Node: b.ref(n), Name: class})
}

// RemoveClass implements host.Backend.
func (b *Backend) RemoveClass(n host.Node, class string) {
	b.Backend.RemoveClass(n, class)
	b.emit(protocol.Mutation{Op: protocol.OpRemoveClass, Node: b.ref(n), Name: class})
}

// SetStyle implements host.Backend.
func (b *Backend) SetStyle(n host.Node, prop, value string) {
	b.Backend.SetStyle(n, prop, value)
	b.emit(protocol.Mutation{Op: protocol.OpSetStyle, Node: b.ref(n), Name: prop, Value: value})
}

// RemoveStyle implements host.Backend.
func (b *Backend) RemoveStyle(n host.Node, prop string) {
	b.Backend.RemoveStyle(n, prop)
	b.emit(protocol.Mutation{Op: protocol.OpRemoveStyle, Node: b.ref(n), Name: prop})
}

// AddListener implements host.Backend. Cancelling the listener of a node
// that was detached since emits nothing.
func (b *Backend) AddListener(n host.Node, event string, fn host.Listener) host.Cancel {
	cancel := b.Backend.AddListener(n, event, fn)
	b.emit(protocol.Mutation{Op: protocol.OpListen, Node: b.ref(n), Name: event})
	done := false
	return func() {
		cancel()
		if done {
			return
		}
		done = true
		if id, ok := b.ids[n]; ok {
			b.emit(protocol.Mutation{Op: protocol.OpUnlisten, Node: id, Name: event})
		}
	}
}
