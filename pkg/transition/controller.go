package transition

import (
	"log/slog"
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseEntering
	phaseLeaving
)

// state is the transition bookkeeping of one live node. It exists only
// while a run is in flight.
type state struct {
	phase phase
	runID uint64
	run   *run
}

// Controller is the transition module. It is not safe for concurrent use;
// drive it from the host loop.
type Controller struct {
	backend      host.Backend
	sched        host.Scheduler
	registry     *Registry
	defaultName  string
	safetyMargin time.Duration
	logger       *slog.Logger
	observers    []Observer
	onHookError  HookErrorHandler

	states    map[host.Node]*state
	lastRunID uint64
}

var (
	_ patch.Module   = (*Controller)(nil)
	_ patch.Inserter = (*Controller)(nil)
	_ patch.Remover  = (*Controller)(nil)
)

// New creates a Controller. The registry may be nil.
func New(b host.Backend, sched host.Scheduler, registry *Registry, opts ...Option) *Controller {
	c := &Controller{
		backend:      b,
		sched:        sched,
		registry:     registry,
		defaultName:  DefaultName,
		safetyMargin: DefaultSafetyMargin,
		logger:       slog.Default(),
		states:       make(map[host.Node]*state),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onHookError == nil {
		c.onHookError = func(el host.Node, hook string, recovered any) {
			err := errors.New("E120").WithDetailf("%s: %v", hook, recovered)
			c.logger.Error("transition hook panicked", "code", err.Code, "hook", hook, "error", err)
		}
	}
	return c
}

// Name implements patch.Module.
func (c *Controller) Name() string { return "transition" }

// Phase reports the direction of the run in flight on el, if any.
func (c *Controller) Phase(el host.Node) (Direction, bool) {
	st := c.states[el]
	if st == nil {
		return Enter, false
	}
	return st.run.dir, true
}

// Runs returns the number of runs in flight.
func (c *Controller) Runs() int {
	return len(c.states)
}

// Create implements patch.Module. It starts the pre-phase of an enter run;
// on the initial mount only descriptors with Appear set run.
func (c *Controller) Create(v *vdom.VNode, mount bool) {
	if visible, ok := v.Visible(); ok && !visible {
		c.backend.SetStyle(v.Handle, "display", "none")
		return
	}
	desc := c.descriptor(v)
	if desc == nil || (mount && !desc.Appear) {
		return
	}
	c.startEnter(v.Handle, desc, mount)
}

// Insert implements patch.Inserter. The node is attached; the enter run
// waits for the next frame.
func (c *Controller) Insert(v *vdom.VNode, _ bool) {
	st := c.states[v.Handle]
	if st == nil || st.phase != phaseEntering || st.run.inserted {
		return
	}
	c.proceed(st.run)
}

// Update implements patch.Module. In visibility mode a toggle of the show
// prop runs the enter or leave sequence on the same node.
func (c *Controller) Update(prev, next *vdom.VNode) {
	wasVisible, hadShow := prev.Visible()
	visible, hasShow := next.Visible()
	if !hadShow && !hasShow {
		return
	}
	if !hadShow {
		wasVisible = true
	}
	if !hasShow {
		visible = true
	}
	if wasVisible == visible {
		return
	}
	if visible {
		c.show(next.Handle, c.descriptor(next))
	} else {
		c.hide(next.Handle, c.descriptor(next))
	}
}

// Remove implements patch.Remover. The leave run calls finalize when it
// completes.
func (c *Controller) Remove(v *vdom.VNode, finalize func()) {
	el := v.Handle
	if st := c.states[el]; st != nil {
		if st.phase == phaseEntering {
			c.preempt(st.run)
		} else {
			c.stop(st.run, OutcomeCancelled)
		}
	}
	desc := c.descriptor(v)
	if visible, ok := v.Visible(); desc == nil || (ok && !visible) {
		finalize()
		return
	}
	r := c.startLeave(el, desc, finalize)
	r.structural = true
}

// Destroy implements patch.Module. Runs on destroyed nodes stop silently,
// except the leave run holding the node's own removal open.
func (c *Controller) Destroy(v *vdom.VNode) {
	st := c.states[v.Handle]
	if st == nil || (st.phase == phaseLeaving && st.run.structural) {
		return
	}
	c.stop(st.run, OutcomeDestroyed)
}

func (c *Controller) show(el host.Node, desc *Descriptor) {
	if st := c.states[el]; st != nil && st.phase == phaseLeaving {
		c.preempt(st.run)
	}
	c.backend.RemoveStyle(el, "display")
	if desc == nil {
		return
	}
	c.proceed(c.startEnter(el, desc, false))
}

func (c *Controller) hide(el host.Node, desc *Descriptor) {
	if st := c.states[el]; st != nil && st.phase == phaseEntering {
		c.preempt(st.run)
	}
	conceal := func() { c.backend.SetStyle(el, "display", "none") }
	if desc == nil {
		conceal()
		return
	}
	c.startLeave(el, desc, conceal)
}

func (c *Controller) descriptor(v *vdom.VNode) *Descriptor {
	value := v.Prop(vdom.PropTransition)
	if value == nil {
		return nil
	}
	spec, err := Normalize(value)
	if err != nil {
		c.logger.Warn("ignoring transition", "tag", v.Tag, "key", vdom.KeyOf(v), "error", err)
		return nil
	}
	// An inert descriptor has nothing to run; treating it as absent makes
	// enter a no-op and leave finalize at once.
	d := Resolve(spec, c.registry, c.defaultName)
	if d == nil || d.Inert() {
		return nil
	}
	return d
}
