package scenario

import (
	"maps"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Node describes one node of a scenario tree. A node without a tag is a
// text node holding Text.
type Node struct {
	Tag   string            `yaml:"tag"`
	Text  string            `yaml:"text"`
	Key   string            `yaml:"key"`
	ID    string            `yaml:"id"`
	Class string            `yaml:"class"`
	Style map[string]string `yaml:"style"`
	Attrs map[string]any    `yaml:"attrs"`

	// Transition is a definition name, true for the default name, or an
	// inline map of definition fields.
	Transition any `yaml:"transition"`

	// Show switches the node to visibility mode.
	Show *bool `yaml:"show"`

	Children []*Node `yaml:"children"`
}

// Build converts n into a fresh VNode tree.
func (n *Node) Build() *vdom.VNode {
	if n == nil {
		return nil
	}
	if n.Tag == "" {
		return vdom.Text(n.Text)
	}

	args := make([]any, 0, 8+len(n.Attrs)+len(n.Children))
	if n.Key != "" {
		args = append(args, vdom.Key(n.Key))
	}
	if n.ID != "" {
		args = append(args, vdom.ID(n.ID))
	}
	if n.Class != "" {
		args = append(args, vdom.Class(n.Class))
	}
	if len(n.Style) > 0 {
		args = append(args, vdom.Style(maps.Clone(n.Style)))
	}
	for _, key := range sortedKeys(n.Attrs) {
		args = append(args, vdom.Prop(key, n.Attrs[key]))
	}
	if n.Transition != nil {
		args = append(args, vdom.Transition(n.Transition))
	}
	if n.Show != nil {
		args = append(args, vdom.Show(*n.Show))
	}
	if n.Text != "" {
		args = append(args, n.Text)
	}
	for _, child := range n.Children {
		args = append(args, child.Build())
	}
	return vdom.El(n.Tag, args...)
}

func (n *Node) validate(tree string) error {
	if n == nil {
		return errors.New("E302").WithDetailf("tree %q has an empty node", tree)
	}
	if n.Tag == "" {
		if n.Text == "" {
			return errors.New("E302").WithDetailf("tree %q: node needs a tag or text", tree)
		}
		if len(n.Children) > 0 || len(n.Attrs) > 0 || n.Class != "" || n.Transition != nil || n.Show != nil {
			return errors.New("E302").WithDetailf("tree %q: text node %q cannot carry element fields", tree, n.Text)
		}
		return nil
	}
	for key := range n.Attrs {
		if vdom.IsReservedProp(key) {
			return errors.New("E302").WithDetailf("tree %q: attribute %q is reserved", tree, key)
		}
	}
	for _, child := range n.Children {
		if err := child.validate(tree); err != nil {
			return err
		}
	}
	return nil
}
