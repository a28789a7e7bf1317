package transition

import "github.com/vango-dev/reconcile/pkg/host"

// arm installs the completion signal of r: the explicit duration if one is
// configured, else the native completion events of the node guarded by a
// safety timer. Runs with nothing to wait for complete synchronously.
func (c *Controller) arm(r *run) {
	if d, ok := r.desc.Duration(r.dir); ok {
		if d <= 0 {
			c.complete(r, TriggerImmediate)
			return
		}
		r.track(c.sched.SetTimer(d, func() { c.complete(r, TriggerDuration) }))
		return
	}
	if !r.desc.CSS {
		c.complete(r, TriggerImmediate)
		return
	}

	timing := c.backend.ComputedTiming(r.el).Resolve()
	if timing.Kind == host.CompletionNone {
		c.complete(r, TriggerImmediate)
		return
	}
	seen := 0
	r.track(c.backend.OnCompletion(r.el, timing.Kind, func(target host.Node, _ string) {
		// Events bubble up from transitioned descendants.
		if target != r.el {
			return
		}
		seen++
		if seen >= timing.Events {
			c.complete(r, TriggerEvent)
		}
	}))
	r.track(c.sched.SetTimer(timing.Timeout+c.safetyMargin, func() {
		c.complete(r, TriggerSafety)
	}))
}
