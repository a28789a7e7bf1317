package patch

import (
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// reconcileChildren patches the child list of a reused element.
func (p *pass) reconcileChildren(parent host.Node, prev, next []*vdom.VNode) {
	checkDuplicateKeys(next)
	if vdom.HasKeys(prev) || vdom.HasKeys(next) {
		p.reconcileKeyed(parent, prev, next)
		return
	}
	p.reconcileUnkeyed(parent, prev, next)
}

// reconcileUnkeyed matches children by position.
func (p *pass) reconcileUnkeyed(parent host.Node, prev, next []*vdom.VNode) {
	common := min(len(prev), len(next))
	for i := 0; i < common; i++ {
		if vdom.SameNode(prev[i], next[i]) {
			p.patchNode(prev[i], next[i])
			continue
		}
		p.create(next[i], parent, p.handle(prev[i], "replace"))
		p.remove(prev[i])
	}
	for _, child := range next[common:] {
		p.create(child, parent, nil)
	}
	for _, child := range prev[common:] {
		p.remove(child)
	}
}

// reconcileKeyed matches children from both ends, then by key. Matched
// nodes out of place are moved by reinserting their existing handle.
func (p *pass) reconcileKeyed(parent host.Node, prevChildren, next []*vdom.VNode) {
	b := p.engine.backend
	// prev entries are cleared once moved; work on a copy.
	prev := append([]*vdom.VNode(nil), prevChildren...)

	oldStart, oldEnd := 0, len(prev)-1
	newStart, newEnd := 0, len(next)-1
	var keyToIdx map[string]int

	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case prev[oldStart] == nil:
			oldStart++
		case prev[oldEnd] == nil:
			oldEnd--
		case vdom.SameNode(prev[oldStart], next[newStart]):
			p.patchNode(prev[oldStart], next[newStart])
			oldStart++
			newStart++
		case vdom.SameNode(prev[oldEnd], next[newEnd]):
			p.patchNode(prev[oldEnd], next[newEnd])
			oldEnd--
			newEnd--
		case vdom.SameNode(prev[oldStart], next[newEnd]):
			// Moved right.
			p.patchNode(prev[oldStart], next[newEnd])
			p.move(parent, next[newEnd].Handle, b.NextSibling(p.handle(prev[oldEnd], "move")))
			oldStart++
			newEnd--
		case vdom.SameNode(prev[oldEnd], next[newStart]):
			// Moved left.
			p.patchNode(prev[oldEnd], next[newStart])
			p.move(parent, next[newStart].Handle, p.handle(prev[oldStart], "move"))
			oldEnd--
			newStart++
		default:
			if keyToIdx == nil {
				keyToIdx = make(map[string]int, oldEnd-oldStart+1)
				for i := oldStart; i <= oldEnd; i++ {
					if key := vdom.KeyOf(prev[i]); key != "" {
						keyToIdx[key] = i
					}
				}
			}
			candidate := next[newStart]
			idx, found := -1, false
			if key := vdom.KeyOf(candidate); key != "" {
				idx, found = keyToIdx[key]
			} else {
				idx, found = findUnkeyed(candidate, prev, oldStart, oldEnd)
			}
			ref := p.handle(prev[oldStart], "move")
			if found && prev[idx] != nil && vdom.SameNode(prev[idx], candidate) {
				p.patchNode(prev[idx], candidate)
				prev[idx] = nil
				p.move(parent, candidate.Handle, ref)
			} else {
				// New key, or same key with a different identity.
				p.create(candidate, parent, ref)
			}
			newStart++
		}
	}

	switch {
	case oldStart > oldEnd:
		var ref host.Node
		if newEnd+1 < len(next) {
			ref = next[newEnd+1].Handle
		}
		for i := newStart; i <= newEnd; i++ {
			p.create(next[i], parent, ref)
		}
	case newStart > newEnd:
		for i := oldStart; i <= oldEnd; i++ {
			if prev[i] != nil {
				p.remove(prev[i])
			}
		}
	}
}

func (p *pass) move(parent, child, ref host.Node) {
	p.stats.Moves++
	p.engine.backend.InsertBefore(parent, child, ref)
}

// findUnkeyed finds an unkeyed old child that can host candidate.
func findUnkeyed(candidate *vdom.VNode, prev []*vdom.VNode, start, end int) (int, bool) {
	for i := start; i <= end; i++ {
		if prev[i] != nil && vdom.SameNode(prev[i], candidate) {
			return i, true
		}
	}
	return -1, false
}
