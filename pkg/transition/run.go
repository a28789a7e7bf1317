package transition

import (
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
)

// run is one enter or leave sequence on a live node.
type run struct {
	id      uint64
	el      host.Node
	dir     Direction
	desc    *Descriptor
	appear  bool
	pre     []string
	active  []string
	started time.Time

	// inserted is set once the run moved past its pre-phase.
	inserted bool
	// structural marks a leave run holding a removal open.
	structural bool
	finalize   func()

	cancels []host.Cancel
}

func (r *run) track(cancel host.Cancel) {
	r.cancels = append(r.cancels, cancel)
}

// release cancels every frame, timer and listener the run armed.
func (r *run) release() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
}

func (c *Controller) begin(el host.Node, desc *Descriptor, dir Direction, appear bool) *run {
	c.lastRunID++
	r := &run{
		id:      c.lastRunID,
		el:      el,
		dir:     dir,
		desc:    desc,
		appear:  appear,
		started: c.sched.Now(),
	}
	r.pre, r.active = desc.Classes(dir, appear)

	ph := phaseEntering
	if dir == Leave {
		ph = phaseLeaving
	}
	c.states[el] = &state{phase: ph, runID: r.id, run: r}

	c.logger.Debug("transition started", "name", desc.Name, "direction", dir, "appear", appear, "run", r.id)
	for _, o := range c.observers {
		o.RunStarted(desc.Name, dir)
	}
	return r
}

// current reports whether r is still the run of its node.
func (c *Controller) current(r *run) bool {
	st := c.states[r.el]
	return st != nil && st.runID == r.id
}

// startEnter runs the enter pre-phase: beforeEnter, then the enter and
// enter-active classes.
func (c *Controller) startEnter(el host.Node, desc *Descriptor, appear bool) *run {
	r := c.begin(el, desc, Enter, appear)
	c.callHook(r, "beforeEnter", desc.Hooks.BeforeEnter)
	if c.current(r) && desc.CSS {
		c.addClasses(r)
	}
	return r
}

// startLeave runs the leave pre-phase and proceeds; the node is attached.
func (c *Controller) startLeave(el host.Node, desc *Descriptor, finalize func()) *run {
	r := c.begin(el, desc, Leave, false)
	r.finalize = finalize
	c.callHook(r, "beforeLeave", desc.Hooks.BeforeLeave)
	if c.current(r) && desc.CSS {
		c.addClasses(r)
	}
	c.proceed(r)
	return r
}

// proceed moves a run past its pre-phase. CSS runs wait for the next frame
// so the pre-phase classes are rendered before they are dropped.
func (c *Controller) proceed(r *run) {
	if !c.current(r) || r.inserted {
		return
	}
	r.inserted = true
	if !r.desc.CSS {
		c.activate(r)
		return
	}
	r.track(c.sched.RequestFrame(func() {
		if !c.current(r) {
			return
		}
		for _, class := range r.pre {
			c.backend.RemoveClass(r.el, class)
		}
		c.activate(r)
	}))
}

// activate calls the enter or leave hook and arms completion detection.
func (c *Controller) activate(r *run) {
	hook, name := r.desc.Hooks.Enter, "enter"
	if r.dir == Leave {
		hook, name = r.desc.Hooks.Leave, "leave"
	}
	explicit := r.desc.Explicit(r.dir)

	ok := true
	if hook != nil {
		var done func()
		if explicit {
			done = c.doneFunc(r)
		}
		ok = c.guard(r.el, name, func() { hook(r.el, done) })
	}
	if !c.current(r) {
		return
	}
	if explicit && ok {
		return
	}
	// A failed explicit hook may never call done; fall back to timing.
	c.arm(r)
}

func (c *Controller) doneFunc(r *run) func() {
	called := false
	return func() {
		if called {
			errors.Violation("E102", "%s run %d of %q", r.dir, r.id, r.desc.Name)
		}
		called = true
		c.complete(r, TriggerCallback)
	}
}

// complete finishes r if it is still current.
func (c *Controller) complete(r *run, trigger Trigger) {
	if !c.current(r) {
		return
	}
	r.release()
	delete(c.states, r.el)
	if r.desc.CSS {
		c.removeClasses(r)
	}

	after, name := r.desc.Hooks.AfterEnter, "afterEnter"
	if r.dir == Leave {
		after, name = r.desc.Hooks.AfterLeave, "afterLeave"
	}
	c.callHook(r, name, after)
	c.report(r, OutcomeCompleted, trigger)

	if r.dir == Leave && r.finalize != nil {
		r.finalize()
	}
}

// preempt cancels r for an opposite run: the cancelled hook observes the
// interrupted classes, which are then stripped.
func (c *Controller) preempt(r *run) {
	r.release()
	delete(c.states, r.el)

	hook, name := r.desc.Hooks.EnterCancelled, "enterCancelled"
	if r.dir == Leave {
		hook, name = r.desc.Hooks.LeaveCancelled, "leaveCancelled"
	}
	c.callHook(r, name, hook)
	if r.desc.CSS {
		c.removeClasses(r)
	}
	c.report(r, OutcomeCancelled, TriggerNone)
}

// stop ends r without hooks.
func (c *Controller) stop(r *run, outcome Outcome) {
	r.release()
	delete(c.states, r.el)
	if r.desc.CSS {
		c.removeClasses(r)
	}
	c.report(r, outcome, TriggerNone)
}

func (c *Controller) addClasses(r *run) {
	for _, class := range r.pre {
		c.backend.AddClass(r.el, class)
	}
	for _, class := range r.active {
		c.backend.AddClass(r.el, class)
	}
}

func (c *Controller) removeClasses(r *run) {
	for _, class := range r.pre {
		c.backend.RemoveClass(r.el, class)
	}
	for _, class := range r.active {
		c.backend.RemoveClass(r.el, class)
	}
}

func (c *Controller) report(r *run, outcome Outcome, trigger Trigger) {
	rep := Report{
		Name:      r.desc.Name,
		Direction: r.dir,
		Appear:    r.appear,
		Outcome:   outcome,
		Trigger:   trigger,
		Elapsed:   c.sched.Now().Sub(r.started),
	}
	c.logger.Debug("transition finished",
		"name", rep.Name,
		"direction", rep.Direction,
		"outcome", rep.Outcome,
		"trigger", rep.Trigger,
		"elapsed", rep.Elapsed,
		"run", r.id,
	)
	for _, o := range c.observers {
		o.RunFinished(rep)
	}
}

func (c *Controller) callHook(r *run, name string, fn func(host.Node)) {
	if fn == nil {
		return
	}
	c.guard(r.el, name, func() { fn(r.el) })
}

// guard runs a user hook. A panic is reported and swallowed so the run's
// bookkeeping proceeds; contract violations are re-raised.
func (c *Controller) guard(el host.Node, name string, fn func()) (ok bool) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if err, isErr := rec.(*errors.Error); isErr && err.Category == errors.CategoryContract {
			panic(rec)
		}
		ok = false
		for _, o := range c.observers {
			o.HookFailed(name)
		}
		c.onHookError(el, name, rec)
	}()
	fn()
	return true
}
