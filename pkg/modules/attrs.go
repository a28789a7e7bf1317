package modules

import (
	"sort"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Attrs synchronizes plain attributes. Reserved props and event handlers
// are skipped. A false boolean removes the attribute, true renders it empty.
type Attrs struct {
	backend host.Backend
}

// NewAttrs creates the attrs module.
func NewAttrs(b host.Backend) *Attrs {
	return &Attrs{backend: b}
}

// Name implements patch.Module.
func (m *Attrs) Name() string { return "attrs" }

// Create implements patch.Module.
func (m *Attrs) Create(v *vdom.VNode, _ bool) {
	m.Update(nil, v)
}

// Update implements patch.Module.
func (m *Attrs) Update(prev, next *vdom.VNode) {
	var old vdom.Props
	if prev != nil {
		old = prev.Props
	}
	h := next.Handle

	for key := range old {
		if vdom.IsReservedProp(key) {
			continue
		}
		if _, ok := next.Props[key]; !ok {
			m.backend.RemoveAttr(h, key)
		}
	}
	keys := make([]string, 0, len(next.Props))
	for key := range next.Props {
		if !vdom.IsReservedProp(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := next.Props[key]
		if prevValue, ok := old[key]; ok && vdom.PropsEqual(prevValue, value) {
			continue
		}
		if b, ok := value.(bool); ok {
			if b {
				m.backend.SetAttr(h, key, "")
			} else {
				m.backend.RemoveAttr(h, key)
			}
			continue
		}
		m.backend.SetAttr(h, key, vdom.PropString(value))
	}
}

// Destroy implements patch.Module.
func (m *Attrs) Destroy(*vdom.VNode) {}
