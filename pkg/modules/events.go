package modules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Events binds on* props to backend listeners. Each event gets a single
// backend listener that dispatches to the handler of the latest
// description, so swapping handlers never re-registers.
type Events struct {
	backend host.Backend
	logger  *slog.Logger
	bound   map[host.Node]map[string]*binding
}

type binding struct {
	handler any
	cancel  host.Cancel
}

// NewEvents creates the events module.
func NewEvents(b host.Backend) *Events {
	return &Events{
		backend: b,
		logger:  slog.Default(),
		bound:   make(map[host.Node]map[string]*binding),
	}
}

// Name implements patch.Module.
func (m *Events) Name() string { return "events" }

// Create implements patch.Module.
func (m *Events) Create(v *vdom.VNode, _ bool) {
	m.Update(nil, v)
}

// Update implements patch.Module.
func (m *Events) Update(prev, next *vdom.VNode) {
	h := next.Handle
	bindings := m.bound[h]

	for name, b := range bindings {
		if _, ok := next.Props[name]; !ok {
			b.cancel()
			delete(bindings, name)
		}
	}
	for name, handler := range next.Props {
		if !vdom.IsEventProp(name) {
			continue
		}
		if b, ok := bindings[name]; ok {
			b.handler = handler
			continue
		}
		if bindings == nil {
			bindings = make(map[string]*binding)
			m.bound[h] = bindings
		}
		b := &binding{handler: handler}
		b.cancel = m.backend.AddListener(h, strings.ToLower(name[2:]), func(target host.Node, event string) {
			m.dispatch(b.handler, target, event)
		})
		bindings[name] = b
	}
	if len(bindings) == 0 {
		delete(m.bound, h)
	}
}

// Destroy implements patch.Module.
func (m *Events) Destroy(v *vdom.VNode) {
	for _, b := range m.bound[v.Handle] {
		b.cancel()
	}
	delete(m.bound, v.Handle)
}

// Bound returns the number of elements with live listeners.
func (m *Events) Bound() int {
	return len(m.bound)
}

func (m *Events) dispatch(handler any, target host.Node, event string) {
	switch fn := handler.(type) {
	case func():
		fn()
	case host.Listener:
		fn(target, event)
	case func(host.Node, string):
		fn(target, event)
	case nil:
	default:
		m.logger.Warn("unsupported event handler", "event", event, "type", fmt.Sprintf("%T", handler))
	}
}
