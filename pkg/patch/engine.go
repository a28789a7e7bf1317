package patch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Engine applies tree descriptions to a host.Backend.
// It is not safe for concurrent use; drive it from the host loop.
type Engine struct {
	backend   host.Backend
	modules   []Module
	inserters []Inserter
	removers  []Remover
	logger    *slog.Logger
	tracer    trace.Tracer
	observers []Observer
}

// New creates an Engine. Modules are dispatched in slice order.
func New(backend host.Backend, modules []Module, opts ...Option) *Engine {
	e := defaultEngine()
	e.backend = backend
	e.modules = append([]Module(nil), modules...)
	for _, m := range e.modules {
		if ins, ok := m.(Inserter); ok {
			e.inserters = append(e.inserters, ins)
		}
		if rem, ok := m.(Remover); ok {
			e.removers = append(e.removers, rem)
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Backend returns the backend the engine mutates.
func (e *Engine) Backend() host.Backend {
	return e.backend
}

// Patch reconciles next against prev under parent and returns the live
// handle of next. See PatchContext.
func (e *Engine) Patch(prev, next *vdom.VNode, parent, ref host.Node) host.Node {
	return e.PatchContext(context.Background(), prev, next, parent, ref)
}

// PatchContext reconciles next against prev.
//
// With a nil prev, next is created and inserted into parent before ref
// (appended when ref is nil); this is the initial mount. With a nil next,
// prev is removed, subject to the Removers. When both are present and
// describe the same node, the live handle is reused and patched in place;
// otherwise next is created at the position of prev and prev is removed.
// A nil parent is resolved from the live handle of prev.
//
// The context only carries the tracing span.
func (e *Engine) PatchContext(ctx context.Context, prev, next *vdom.VNode, parent, ref host.Node) host.Node {
	if prev == next {
		if next == nil {
			return nil
		}
		return next.Handle
	}

	_, span := e.tracer.Start(ctx, "patch", trace.WithAttributes(
		attribute.Bool("reconcile.mount", prev == nil),
	))
	defer span.End()

	start := time.Now()
	p := &pass{engine: e, mount: prev == nil}

	switch {
	case prev == nil:
		p.create(next, parent, ref)
	case next == nil:
		p.remove(prev)
	case vdom.SameNode(prev, next):
		p.patchNode(prev, next)
	default:
		if parent == nil {
			parent = e.backend.Parent(p.handle(prev, "replace"))
		}
		p.create(next, parent, prev.Handle)
		p.remove(prev)
	}
	p.flushInserts()

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("reconcile.creates", p.stats.Creates),
		attribute.Int("reconcile.updates", p.stats.Updates),
		attribute.Int("reconcile.removes", p.stats.Removes),
		attribute.Int("reconcile.moves", p.stats.Moves),
	)
	e.logger.Debug("patch applied",
		"mount", p.mount,
		"creates", p.stats.Creates,
		"updates", p.stats.Updates,
		"removes", p.stats.Removes,
		"moves", p.stats.Moves,
		"elapsed", elapsed,
	)
	for _, o := range e.observers {
		o.PatchDone(elapsed, p.stats)
	}

	if next == nil {
		return nil
	}
	return next.Handle
}

// pass is the state of a single Patch call.
type pass struct {
	engine *Engine
	mount  bool
	// inserted queues created elements for their Insert hooks,
	// children before parents.
	inserted []*vdom.VNode
	stats    Stats
}

func (p *pass) handle(v *vdom.VNode, op string) host.Node {
	if v.Handle == nil {
		errors.Violation("E100", "%s of <%s> key=%q", op, v.Tag, vdom.KeyOf(v))
	}
	return v.Handle
}

// create realizes v and its subtree and inserts it under parent before ref.
func (p *pass) create(v *vdom.VNode, parent, ref host.Node) {
	if v == nil {
		return
	}
	b := p.engine.backend
	p.stats.Creates++

	if v.Kind == vdom.KindText {
		v.Handle = b.CreateText(v.Text)
		if parent != nil {
			b.InsertBefore(parent, v.Handle, ref)
		}
		return
	}

	checkDuplicateKeys(v.Children)
	v.Handle = b.CreateElement(v.Tag, v.Namespace)
	for _, child := range v.Children {
		p.create(child, v.Handle, nil)
	}
	for _, m := range p.engine.modules {
		m.Create(v, p.mount)
	}
	if parent != nil {
		b.InsertBefore(parent, v.Handle, ref)
	}
	p.inserted = append(p.inserted, v)
}

func (p *pass) flushInserts() {
	queue := p.inserted
	p.inserted = nil
	for _, v := range queue {
		for _, ins := range p.engine.inserters {
			ins.Insert(v, p.mount)
		}
	}
}

// remove starts the removal of v. Destroy hooks cascade through the
// subtree immediately; detachment waits for every Remover.
func (p *pass) remove(v *vdom.VNode) {
	if v == nil {
		return
	}
	handle := p.handle(v, "remove")
	p.stats.Removes++

	if v.Kind == vdom.KindText {
		p.engine.backend.Detach(handle)
		v.Handle = nil
		return
	}

	removers := p.engine.removers
	remaining := len(removers)
	destroyed := false
	detach := func() {
		if remaining > 0 || !destroyed {
			return
		}
		p.engine.backend.Detach(handle)
		v.Walk(func(n *vdom.VNode) { n.Handle = nil })
	}
	for _, rem := range removers {
		called := false
		rem.Remove(v, func() {
			if called {
				errors.Violation("E103", "<%s> key=%q", v.Tag, vdom.KeyOf(v))
			}
			called = true
			remaining--
			detach()
		})
	}
	p.destroy(v)
	destroyed = true
	detach()
}

func (p *pass) destroy(v *vdom.VNode) {
	if v.Kind != vdom.KindElement {
		return
	}
	for _, m := range p.engine.modules {
		m.Destroy(v)
	}
	for _, child := range v.Children {
		p.destroy(child)
	}
}

// patchNode patches next in place of prev. The two describe the same node.
func (p *pass) patchNode(prev, next *vdom.VNode) {
	if prev == next {
		return
	}
	next.Handle = p.handle(prev, "update")

	if next.Kind == vdom.KindText {
		if prev.Text != next.Text {
			p.engine.backend.SetText(next.Handle, next.Text)
		}
		return
	}

	p.reconcileChildren(next.Handle, prev.Children, next.Children)
	p.stats.Updates++
	for _, m := range p.engine.modules {
		m.Update(prev, next)
	}
}

func checkDuplicateKeys(children []*vdom.VNode) {
	if len(children) < 2 {
		return
	}
	seen := make(map[string]struct{}, len(children))
	for _, child := range children {
		key := vdom.KeyOf(child)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			errors.Violation("E101", "key %q", key)
		}
		seen[key] = struct{}{}
	}
}
