package vtest

import (
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/loop"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/modules"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/transition"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Harness drives a tree on a headless backend.
type Harness struct {
	Loop        *loop.Virtual
	Doc         *memdom.Document
	Engine      *patch.Engine
	Transitions *transition.Controller
	Registry    *transition.Registry
	// Root is the container trees are rendered into.
	Root *memdom.Node

	tree *vdom.VNode
}

type config struct {
	frameInterval time.Duration
	rules         []memdom.Rule
	registry      *transition.Registry
	transition    []transition.Option
	engine        []patch.Option
	wrap          func(host.Backend) host.Backend
}

// Option configures a Harness.
type Option func(*config)

// WithRules installs stylesheet rules on the document.
func WithRules(rules ...memdom.Rule) Option {
	return func(c *config) { c.rules = append(c.rules, rules...) }
}

// WithRegistry sets the transition registry.
func WithRegistry(r *transition.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithFrameInterval sets the virtual frame period.
func WithFrameInterval(d time.Duration) Option {
	return func(c *config) { c.frameInterval = d }
}

// WithTransitionOptions passes options to the transition controller.
func WithTransitionOptions(opts ...transition.Option) Option {
	return func(c *config) { c.transition = append(c.transition, opts...) }
}

// WithEngineOptions passes options to the patch engine.
func WithEngineOptions(opts ...patch.Option) Option {
	return func(c *config) { c.engine = append(c.engine, opts...) }
}

// WithBackend wraps the document before the engine and the controller use
// it, for example to mirror mutations.
func WithBackend(wrap func(host.Backend) host.Backend) Option {
	return func(c *config) { c.wrap = wrap }
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = transition.NewRegistry()
	}

	h := &Harness{
		Loop:     loop.NewVirtual(cfg.frameInterval),
		Registry: cfg.registry,
	}
	h.Doc = memdom.New(h.Loop, cfg.rules...)

	var backend host.Backend = h.Doc
	if cfg.wrap != nil {
		backend = cfg.wrap(backend)
	}
	h.Transitions = transition.New(backend, h.Loop, h.Registry, cfg.transition...)
	h.Engine = patch.New(backend, append(modules.Default(backend), h.Transitions), cfg.engine...)

	h.Root = h.Doc.CreateElement("div", host.NamespaceHTML).(*memdom.Node)
	h.Doc.InsertBefore(h.Doc.Body(), h.Root, nil)
	return h
}

// Render patches tree against the previously rendered one. The first call
// is the initial mount. A nil tree unmounts.
func (h *Harness) Render(tree *vdom.VNode) host.Node {
	prev := h.tree
	h.tree = tree
	return h.Engine.Patch(prev, tree, h.Root, nil)
}

// Tree returns the last rendered tree.
func (h *Harness) Tree() *vdom.VNode {
	return h.tree
}

// Frame runs the next frame.
func (h *Harness) Frame() {
	h.Loop.Frame()
}

// Advance moves virtual time forward.
func (h *Harness) Advance(d time.Duration) {
	h.Loop.Advance(d)
}

// Flush runs queued frames and timers until the loop is idle.
func (h *Harness) Flush() {
	h.Loop.Flush(10_000)
}

// Elapsed returns the virtual time since the harness was created.
func (h *Harness) Elapsed() time.Duration {
	return h.Loop.Elapsed()
}

// HTML returns the markup of the rendered tree.
func (h *Harness) HTML() string {
	return h.Root.InnerHTML()
}

// Mounted returns the element rendered at the root, or nil.
func (h *Harness) Mounted() *memdom.Node {
	els := h.Root.ChildElements()
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// Child returns the i-th element child of the mounted element, or nil.
func (h *Harness) Child(i int) *memdom.Node {
	m := h.Mounted()
	if m == nil {
		return nil
	}
	els := m.ChildElements()
	if i < 0 || i >= len(els) {
		return nil
	}
	return els[i]
}

// Children returns the number of element children of the mounted element.
func (h *Harness) Children() int {
	m := h.Mounted()
	if m == nil {
		return 0
	}
	return len(m.ChildElements())
}

// Fade returns a stylesheet rule giving the active classes of name a
// transition of d on one property.
func Fade(name string, d time.Duration) []memdom.Rule {
	t := host.Timing{TransitionDuration: d, TransitionProps: 1}
	return []memdom.Rule{
		{Class: name + "-enter-active", Timing: t},
		{Class: name + "-leave-active", Timing: t},
	}
}

// Animate returns rules giving the active classes of name an animation of d.
func Animate(name string, d time.Duration) []memdom.Rule {
	t := host.Timing{AnimationDuration: d, AnimationCount: 1}
	return []memdom.Rule{
		{Class: name + "-enter-active", Timing: t},
		{Class: name + "-leave-active", Timing: t},
	}
}

// ExpectClass asserts the class attribute of n.
func ExpectClass(t testing.TB, n *memdom.Node, want string) {
	t.Helper()
	if n == nil {
		t.Errorf("expected element with class %q, got none", want)
		return
	}
	if got := n.ClassName(); got != want {
		t.Errorf("expected class %q, got %q", want, got)
	}
}

// ExpectChildren asserts the number of element children of the mounted element.
func ExpectChildren(t testing.TB, h *Harness, want int) {
	t.Helper()
	if got := h.Children(); got != want {
		t.Errorf("expected %d children, got %d:\n%s", want, got, truncate(h.HTML(), 500))
	}
}

// ExpectHTML asserts the markup of the mounted element's children.
func ExpectHTML(t testing.TB, h *Harness, want string) {
	t.Helper()
	got := ""
	if m := h.Mounted(); m != nil {
		got = m.InnerHTML()
	}
	if got != want {
		t.Errorf("expected HTML %q, got %q", want, got)
	}
}

// ExpectContains asserts that the rendered markup contains expected.
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered markup does not contain unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
