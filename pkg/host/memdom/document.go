package memdom

import (
	"fmt"
	"slices"

	"github.com/vango-dev/reconcile/pkg/host"
)

// Rule is a stylesheet entry: the timing a class contributes while applied.
type Rule struct {
	Class  string
	Timing host.Timing
}

// Document implements host.Backend with in-memory nodes.
type Document struct {
	body      *Node
	sched     host.Scheduler
	rules     map[string]host.Timing
	mutations int
	record    bool
	log       []string
}

var _ host.Backend = (*Document)(nil)

// New creates a Document that schedules native completion events on sched.
func New(sched host.Scheduler, rules ...Rule) *Document {
	d := &Document{
		sched: sched,
		rules: make(map[string]host.Timing),
	}
	d.body = &Node{doc: d, kind: elementNode, root: true, tag: "body"}
	for _, r := range rules {
		d.AddRule(r)
	}
	return d
}

// Body returns the document root. Nodes only receive native completion
// events while connected to it.
func (d *Document) Body() *Node {
	return d.body
}

// AddRule adds or replaces a stylesheet rule.
func (d *Document) AddRule(r Rule) {
	d.rules[r.Class] = r.Timing
}

// Record enables the mutation log.
func (d *Document) Record(enabled bool) {
	d.record = enabled
}

// Mutations returns the number of state-changing calls since creation or
// the last ResetMutations.
func (d *Document) Mutations() int {
	return d.mutations
}

// ResetMutations clears the mutation counter and log.
func (d *Document) ResetMutations() {
	d.mutations = 0
	d.log = nil
}

// Log returns the recorded mutations.
func (d *Document) Log() []string {
	return slices.Clone(d.log)
}

func (d *Document) mutate(format string, args ...any) {
	d.mutations++
	if d.record {
		d.log = append(d.log, fmt.Sprintf(format, args...))
	}
}

func (d *Document) node(n host.Node) *Node {
	if n == nil {
		return nil
	}
	node, ok := n.(*Node)
	if !ok || node.doc != d {
		panic(fmt.Sprintf("memdom: foreign node %T", n))
	}
	return node
}

// CreateElement implements host.Backend.
func (d *Document) CreateElement(tag string, ns host.Namespace) host.Node {
	d.mutate("create <%s>", tag)
	return &Node{doc: d, kind: elementNode, tag: tag, namespace: ns}
}

// CreateText implements host.Backend.
func (d *Document) CreateText(text string) host.Node {
	d.mutate("create %q", text)
	return &Node{doc: d, kind: textNode, text: text}
}

// SetText implements host.Backend.
func (d *Document) SetText(n host.Node, text string) {
	node := d.node(n)
	if node.text == text {
		return
	}
	node.text = text
	d.mutate("text %q", text)
}

// InsertBefore implements host.Backend.
func (d *Document) InsertBefore(parent, child, ref host.Node) {
	p, c, r := d.node(parent), d.node(child), d.node(ref)
	if c == r {
		return
	}
	if r != nil && r.parent != p {
		panic(fmt.Sprintf("memdom: reference <%s> is not a child of <%s>", r.Tag(), p.Tag()))
	}
	if c.parent != nil {
		c.parent.children = slices.Delete(c.parent.children, c.parent.indexOf(c), c.parent.indexOf(c)+1)
	}
	c.parent = p
	if r == nil {
		p.children = append(p.children, c)
	} else {
		p.children = slices.Insert(p.children, p.indexOf(r), c)
	}
	d.mutate("insert <%s> into <%s>", c.Tag(), p.Tag())
	c.walk(d.scheduleCompletion)
}

// Detach implements host.Backend.
func (d *Document) Detach(n host.Node) {
	node := d.node(n)
	if node.parent == nil {
		return
	}
	p := node.parent
	p.children = slices.Delete(p.children, p.indexOf(node), p.indexOf(node)+1)
	node.parent = nil
	node.walk((*Node).cancelPending)
	d.mutate("detach <%s>", node.Tag())
}

// Parent implements host.Backend.
func (d *Document) Parent(n host.Node) host.Node {
	node := d.node(n)
	if node.parent == nil {
		return nil
	}
	return node.parent
}

// NextSibling implements host.Backend.
func (d *Document) NextSibling(n host.Node) host.Node {
	node := d.node(n)
	if node.parent == nil {
		return nil
	}
	i := node.parent.indexOf(node)
	if i+1 >= len(node.parent.children) {
		return nil
	}
	return node.parent.children[i+1]
}

// SetAttr implements host.Backend.
func (d *Document) SetAttr(n host.Node, key, value string) {
	node := d.node(n)
	if old, ok := node.attrs[key]; ok && old == value {
		return
	}
	if node.attrs == nil {
		node.attrs = make(map[string]string)
	}
	if _, ok := node.attrs[key]; !ok {
		node.attrOrder = append(node.attrOrder, key)
	}
	node.attrs[key] = value
	d.mutate("attr %s=%q", key, value)
}

// RemoveAttr implements host.Backend.
func (d *Document) RemoveAttr(n host.Node, key string) {
	node := d.node(n)
	if _, ok := node.attrs[key]; !ok {
		return
	}
	delete(node.attrs, key)
	node.attrOrder = slices.DeleteFunc(node.attrOrder, func(k string) bool { return k == key })
	d.mutate("remove attr %s", key)
}

// AddClass implements host.Backend.
func (d *Document) AddClass(n host.Node, class string) {
	node := d.node(n)
	if class == "" || node.HasClass(class) {
		return
	}
	node.classes = append(node.classes, class)
	d.mutate("add class %s", class)
	d.scheduleCompletion(node)
}

// RemoveClass implements host.Backend.
func (d *Document) RemoveClass(n host.Node, class string) {
	node := d.node(n)
	if !node.HasClass(class) {
		return
	}
	node.classes = slices.DeleteFunc(node.classes, func(c string) bool { return c == class })
	d.mutate("remove class %s", class)
	d.scheduleCompletion(node)
}

// SetStyle implements host.Backend.
func (d *Document) SetStyle(n host.Node, prop, value string) {
	node := d.node(n)
	if old, ok := node.style[prop]; ok && old == value {
		return
	}
	if node.style == nil {
		node.style = make(map[string]string)
	}
	if _, ok := node.style[prop]; !ok {
		node.styleOrder = append(node.styleOrder, prop)
	}
	node.style[prop] = value
	d.mutate("style %s: %s", prop, value)
}

// RemoveStyle implements host.Backend.
func (d *Document) RemoveStyle(n host.Node, prop string) {
	node := d.node(n)
	if _, ok := node.style[prop]; !ok {
		return
	}
	delete(node.style, prop)
	node.styleOrder = slices.DeleteFunc(node.styleOrder, func(p string) bool { return p == prop })
	d.mutate("remove style %s", prop)
}

// AddListener implements host.Backend.
func (d *Document) AddListener(n host.Node, event string, fn host.Listener) host.Cancel {
	node := d.node(n)
	if node.listeners == nil {
		node.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	node.listeners[event] = append(node.listeners[event], l)
	d.mutate("listen %s", event)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		node.listeners[event] = slices.DeleteFunc(node.listeners[event], func(x *listener) bool { return x == l })
		d.mutate("unlisten %s", event)
	}
}

// ComputedTiming implements host.Backend.
func (d *Document) ComputedTiming(n host.Node) host.Timing {
	node := d.node(n)
	var t host.Timing
	for _, class := range node.classes {
		if rule, ok := d.rules[class]; ok {
			t = t.Max(rule)
		}
	}
	return t
}

// OnCompletion implements host.Backend.
func (d *Document) OnCompletion(n host.Node, kind host.CompletionKind, fn host.Listener) host.Cancel {
	node := d.node(n)
	if node.completion == nil {
		node.completion = make(map[host.CompletionKind][]*listener)
	}
	l := &listener{fn: fn}
	node.completion[kind] = append(node.completion[kind], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		node.completion[kind] = slices.DeleteFunc(node.completion[kind], func(x *listener) bool { return x == l })
	}
}

// scheduleCompletion reschedules the native completion events of node after
// its class list changed or it was attached.
func (d *Document) scheduleCompletion(node *Node) {
	node.cancelPending()
	if d.sched == nil || !node.Connected() {
		return
	}
	resolved := d.ComputedTiming(node).Resolve()
	if resolved.Kind == host.CompletionNone {
		return
	}
	for i := 0; i < resolved.Events; i++ {
		node.pending = append(node.pending, d.sched.SetTimer(resolved.Timeout, func() {
			d.fireCompletion(node, resolved.Kind)
		}))
	}
}

// fireCompletion delivers a completion event at node and bubbles it.
func (d *Document) fireCompletion(node *Node, kind host.CompletionKind) {
	if !node.Connected() {
		return
	}
	for p := node; p != nil; p = p.parent {
		for _, l := range slices.Clone(p.completion[kind]) {
			if !l.removed {
				l.fn(node, kind.String())
			}
		}
	}
}

// Fire emits a completion event at n immediately, as if the host had
// finished a transition or animation.
func (d *Document) Fire(n host.Node, kind host.CompletionKind) {
	d.fireCompletion(d.node(n), kind)
}
