package mirror

import (
	"fmt"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/protocol"
)

// Replica rebuilds a mirrored tree on another backend by applying
// mutation batches in order.
type Replica struct {
	backend   host.Backend
	nodes     map[uint64]host.Node
	listeners map[listenKey]host.Cancel

	// OnEvent, when set, receives the events dispatched to replicated
	// listeners.
	OnEvent func(id uint64, event string)
}

type listenKey struct {
	id    uint64
	event string
}

// NewReplica creates a Replica whose node rootID is root.
func NewReplica(b host.Backend, root host.Node, rootID uint64) *Replica {
	return &Replica{
		backend:   b,
		nodes:     map[uint64]host.Node{rootID: root},
		listeners: make(map[listenKey]host.Cancel),
	}
}

// Node returns the replicated node with the given ID.
func (r *Replica) Node(id uint64) (host.Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Apply applies a batch. It stops at the first mutation referencing an
// unknown node and returns an E401 error.
func (r *Replica) Apply(batch []protocol.Mutation) error {
	for i, m := range batch {
		if err := r.apply(m); err != nil {
			return errors.New("E401").WithDetailf("mutation %d (%s)", i, m).Wrap(err)
		}
	}
	return nil
}

type unknownNode uint64

func (u unknownNode) Error() string {
	return fmt.Sprintf("no node #%d", uint64(u))
}

func (r *Replica) lookup(id uint64) (host.Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, unknownNode(id)
	}
	return n, nil
}

func (r *Replica) apply(m protocol.Mutation) error {
	switch m.Op {
	case protocol.OpCreateElement:
		ns := host.NamespaceHTML
		if m.Value == host.NamespaceSVG.String() {
			ns = host.NamespaceSVG
		}
		r.nodes[m.Node] = r.backend.CreateElement(m.Name, ns)
		return nil
	case protocol.OpCreateText:
		r.nodes[m.Node] = r.backend.CreateText(m.Value)
		return nil
	case protocol.OpInsertBefore:
		parent, err := r.lookup(m.Parent)
		if err != nil {
			return err
		}
		child, err := r.lookup(m.Node)
		if err != nil {
			return err
		}
		var ref host.Node
		if m.Ref != 0 {
			if ref, err = r.lookup(m.Ref); err != nil {
				return err
			}
		}
		r.backend.InsertBefore(parent, child, ref)
		return nil
	}

	n, err := r.lookup(m.Node)
	if err != nil {
		return err
	}
	switch m.Op {
	case protocol.OpSetText:
		r.backend.SetText(n, m.Value)
	case protocol.OpDetach:
		r.backend.Detach(n)
		delete(r.nodes, m.Node)
	case protocol.OpSetAttr:
		r.backend.SetAttr(n, m.Name, m.Value)
	case protocol.OpRemoveAttr:
		r.backend.RemoveAttr(n, m.Name)
	case protocol.OpAddClass:
		r.backend.AddClass(n, m.Name)
	case protocol.OpRemoveClass:
		r.backend.RemoveClass(n, m.Name)
	case protocol.OpSetStyle:
		r.backend.SetStyle(n, m.Name, m.Value)
	case protocol.OpRemoveStyle:
		r.backend.RemoveStyle(n, m.Name)
	case protocol.OpListen:
		id := m.Node
		key := listenKey{id, m.Name}
		if cancel, ok := r.listeners[key]; ok {
			cancel()
		}
		r.listeners[key] = r.backend.AddListener(n, m.Name, func(_ host.Node, event string) {
			if r.OnEvent != nil {
				r.OnEvent(id, event)
			}
		})
	case protocol.OpUnlisten:
		key := listenKey{m.Node, m.Name}
		if cancel, ok := r.listeners[key]; ok {
			cancel()
			delete(r.listeners, key)
		}
	}
	return nil
}
