package transition

import (
	"strings"
	"time"

	"github.com/vango-dev/reconcile/pkg/host"
)

// DefaultName is the transition name used for an unnamed transition.
const DefaultName = "v"

// CompletionMode selects how the enter and leave hooks signal completion.
type CompletionMode uint8

const (
	// CompletionTiming completes runs by duration or native events.
	CompletionTiming CompletionMode = iota
	// CompletionCallback completes a run only when the done callback
	// passed to its Enter or Leave hook is invoked.
	CompletionCallback
)

// String returns the string representation of the CompletionMode.
func (m CompletionMode) String() string {
	switch m {
	case CompletionTiming:
		return "timing"
	case CompletionCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Hooks are the user callbacks of a transition. All of them are optional.
// Enter and Leave receive a non-nil done only when their direction is in
// CompletionCallback mode.
type Hooks struct {
	BeforeEnter    func(el host.Node)
	Enter          func(el host.Node, done func())
	AfterEnter     func(el host.Node)
	EnterCancelled func(el host.Node)

	BeforeLeave    func(el host.Node)
	Leave          func(el host.Node, done func())
	AfterLeave     func(el host.Node)
	LeaveCancelled func(el host.Node)
}

// merge returns h with every hook set in o replacing its own.
func (h Hooks) merge(o Hooks) Hooks {
	pick := func(dst *func(host.Node), src func(host.Node)) {
		if src != nil {
			*dst = src
		}
	}
	pick(&h.BeforeEnter, o.BeforeEnter)
	pick(&h.AfterEnter, o.AfterEnter)
	pick(&h.EnterCancelled, o.EnterCancelled)
	pick(&h.BeforeLeave, o.BeforeLeave)
	pick(&h.AfterLeave, o.AfterLeave)
	pick(&h.LeaveCancelled, o.LeaveCancelled)
	if o.Enter != nil {
		h.Enter = o.Enter
	}
	if o.Leave != nil {
		h.Leave = o.Leave
	}
	return h
}

func (h Hooks) empty() bool {
	return h.BeforeEnter == nil && h.Enter == nil && h.AfterEnter == nil && h.EnterCancelled == nil &&
		h.BeforeLeave == nil && h.Leave == nil && h.AfterLeave == nil && h.LeaveCancelled == nil
}

// Descriptor is the canonical, fully resolved form of a transition.
type Descriptor struct {
	Name   string
	CSS    bool
	Appear bool

	EnterClass        string
	EnterActiveClass  string
	LeaveClass        string
	LeaveActiveClass  string
	AppearClass       string
	AppearActiveClass string

	// EnterDuration and LeaveDuration, when set, replace native event
	// detection with a fixed timer.
	EnterDuration *time.Duration
	LeaveDuration *time.Duration

	EnterCompletion CompletionMode
	LeaveCompletion CompletionMode
	Hooks           Hooks
}

// Classes returns the pre-phase and active class tokens of a run.
// Appear classes fall back to the enter classes.
func (d *Descriptor) Classes(dir Direction, appear bool) (pre, active []string) {
	switch {
	case dir == Leave:
		return strings.Fields(d.LeaveClass), strings.Fields(d.LeaveActiveClass)
	case appear:
		return strings.Fields(d.AppearClass), strings.Fields(d.AppearActiveClass)
	default:
		return strings.Fields(d.EnterClass), strings.Fields(d.EnterActiveClass)
	}
}

// Duration returns the explicit duration for dir, if any.
func (d *Descriptor) Duration(dir Direction) (time.Duration, bool) {
	p := d.EnterDuration
	if dir == Leave {
		p = d.LeaveDuration
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Explicit reports whether runs in dir complete only by callback.
func (d *Descriptor) Explicit(dir Direction) bool {
	if dir == Leave {
		return d.LeaveCompletion == CompletionCallback && d.Hooks.Leave != nil
	}
	return d.EnterCompletion == CompletionCallback && d.Hooks.Enter != nil
}

// Inert reports whether the descriptor can produce no visible effect:
// no classes, no hooks and no explicit duration.
func (d *Descriptor) Inert() bool {
	return !d.CSS && d.Hooks.empty() && d.EnterDuration == nil && d.LeaveDuration == nil
}

// Resolve turns a Spec into a Descriptor. Named specs and the name of an
// inline definition are looked up in the registry; the fields set inline
// override the registered ones. An unknown name still resolves, with the
// class names derived from it. A SpecNone resolves to nil.
//
// The registry may be nil. An empty defaultName selects DefaultName.
func Resolve(spec Spec, registry *Registry, defaultName string) *Descriptor {
	if defaultName == "" {
		defaultName = DefaultName
	}

	var def Definition
	switch spec.Kind {
	case SpecNamed:
		def.Name = spec.Name
	case SpecInline:
		def = spec.Inline
	default:
		return nil
	}
	if def.Name == "" {
		def.Name = defaultName
	}
	if registered, ok := registry.Lookup(def.Name); ok {
		def = registered.override(def)
	}

	name := def.Name
	d := &Descriptor{
		Name:             name,
		CSS:              def.CSS == nil || *def.CSS,
		Appear:           def.Appear != nil && *def.Appear,
		EnterClass:       orDefault(def.EnterClass, name+"-enter"),
		EnterActiveClass: orDefault(def.EnterActiveClass, name+"-enter-active"),
		LeaveClass:       orDefault(def.LeaveClass, name+"-leave"),
		LeaveActiveClass: orDefault(def.LeaveActiveClass, name+"-leave-active"),
		EnterDuration:    def.EnterDuration,
		LeaveDuration:    def.LeaveDuration,
		EnterCompletion:  def.EnterCompletion,
		LeaveCompletion:  def.LeaveCompletion,
		Hooks:            def.Hooks,
	}
	d.AppearClass = orDefault(def.AppearClass, d.EnterClass)
	d.AppearActiveClass = orDefault(def.AppearActiveClass, d.EnterActiveClass)
	return d
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
