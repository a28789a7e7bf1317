package modules

import (
	"strings"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Class synchronizes the class prop token by token. Tokens not named in
// the prop, such as transition phase classes, are left alone.
type Class struct {
	backend host.Backend
}

// NewClass creates the class module.
func NewClass(b host.Backend) *Class {
	return &Class{backend: b}
}

// Name implements patch.Module.
func (m *Class) Name() string { return "class" }

// Create implements patch.Module.
func (m *Class) Create(v *vdom.VNode, _ bool) {
	for _, token := range strings.Fields(v.ClassName()) {
		m.backend.AddClass(v.Handle, token)
	}
}

// Update implements patch.Module.
func (m *Class) Update(prev, next *vdom.VNode) {
	before, after := prev.ClassName(), next.ClassName()
	if before == after {
		return
	}
	keep := make(map[string]struct{})
	for _, token := range strings.Fields(after) {
		keep[token] = struct{}{}
	}
	had := make(map[string]struct{})
	for _, token := range strings.Fields(before) {
		had[token] = struct{}{}
		if _, ok := keep[token]; !ok {
			m.backend.RemoveClass(next.Handle, token)
		}
	}
	for _, token := range strings.Fields(after) {
		if _, ok := had[token]; !ok {
			m.backend.AddClass(next.Handle, token)
		}
	}
}

// Destroy implements patch.Module.
func (m *Class) Destroy(*vdom.VNode) {}
