package modules

import (
	"sort"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Style synchronizes inline style properties from the style prop, given
// either as map[string]string or as a declaration string.
type Style struct {
	backend host.Backend
}

// NewStyle creates the style module.
func NewStyle(b host.Backend) *Style {
	return &Style{backend: b}
}

// Name implements patch.Module.
func (m *Style) Name() string { return "style" }

// Create implements patch.Module.
func (m *Style) Create(v *vdom.VNode, _ bool) {
	m.Update(nil, v)
}

// Update implements patch.Module.
func (m *Style) Update(prev, next *vdom.VNode) {
	if prev != nil && vdom.PropsEqual(prev.Prop(vdom.PropStyle), next.Prop(vdom.PropStyle)) {
		return
	}
	var old map[string]string
	if prev != nil {
		old = vdom.ParseStyle(prev.Prop(vdom.PropStyle))
	}
	cur := vdom.ParseStyle(next.Prop(vdom.PropStyle))

	for _, prop := range sortedKeys(old) {
		if _, ok := cur[prop]; !ok {
			m.backend.RemoveStyle(next.Handle, prop)
		}
	}
	for _, prop := range sortedKeys(cur) {
		if value, ok := old[prop]; ok && value == cur[prop] {
			continue
		}
		m.backend.SetStyle(next.Handle, prop, cur[prop])
	}
}

// Destroy implements patch.Module.
func (m *Style) Destroy(*vdom.VNode) {}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
