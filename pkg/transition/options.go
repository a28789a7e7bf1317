package transition

import (
	"log/slog"
	"time"

	"github.com/vango-dev/reconcile/pkg/host"
)

// DefaultSafetyMargin is added to a detected duration before the safety
// timer forces completion.
const DefaultSafetyMargin = time.Millisecond

// Direction is the direction of a run.
type Direction uint8

const (
	Enter Direction = iota
	Leave
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	if d == Leave {
		return "leave"
	}
	return "enter"
}

// Outcome is how a run ended.
type Outcome uint8

const (
	// OutcomeCompleted means the run reached its after hook.
	OutcomeCompleted Outcome = iota
	// OutcomeCancelled means an opposite run preempted it.
	OutcomeCancelled
	// OutcomeDestroyed means its node was destroyed mid-run.
	OutcomeDestroyed
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Trigger is the signal that completed a run.
type Trigger uint8

const (
	TriggerNone Trigger = iota
	// TriggerImmediate: nothing to wait for (zero duration, no CSS).
	TriggerImmediate
	// TriggerDuration: the explicit duration elapsed.
	TriggerDuration
	// TriggerEvent: the native completion events arrived.
	TriggerEvent
	// TriggerSafety: the safety timer fired before the native events.
	TriggerSafety
	// TriggerCallback: the done callback was invoked.
	TriggerCallback
)

// String returns the string representation of the Trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerImmediate:
		return "immediate"
	case TriggerDuration:
		return "duration"
	case TriggerEvent:
		return "event"
	case TriggerSafety:
		return "safety"
	case TriggerCallback:
		return "callback"
	default:
		return "none"
	}
}

// Report describes a finished run.
type Report struct {
	Name      string
	Direction Direction
	Appear    bool
	Outcome   Outcome
	Trigger   Trigger
	Elapsed   time.Duration
}

// Observer receives run lifecycle notifications.
type Observer interface {
	RunStarted(name string, dir Direction)
	RunFinished(r Report)
	HookFailed(hook string)
}

// HookErrorHandler receives the value recovered from a panicking hook.
type HookErrorHandler func(el host.Node, hook string, recovered any)

// Option configures a Controller.
type Option func(*Controller)

// WithDefaultName sets the name used for unnamed transitions.
func WithDefaultName(name string) Option {
	return func(c *Controller) {
		if name != "" {
			c.defaultName = name
		}
	}
}

// WithSafetyMargin sets the margin added to detected durations.
func WithSafetyMargin(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.safetyMargin = d
		}
	}
}

// WithLogger sets the controller logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithHookErrorHandler replaces the default handler, which logs the
// recovered value at error level.
func WithHookErrorHandler(fn HookErrorHandler) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onHookError = fn
		}
	}
}
