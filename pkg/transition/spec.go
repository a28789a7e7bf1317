package transition

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
)

// Definition configures a transition. Definitions are registered under a
// name or given inline on a node. Unset fields fall back to the registered
// definition of the same name, then to the defaults derived from the name.
type Definition struct {
	Name   string `yaml:"name,omitempty" koanf:"name"`
	CSS    *bool  `yaml:"css,omitempty" koanf:"css"`
	Appear *bool  `yaml:"appear,omitempty" koanf:"appear"`

	EnterClass        string `yaml:"enter_class,omitempty" koanf:"enter_class"`
	EnterActiveClass  string `yaml:"enter_active_class,omitempty" koanf:"enter_active_class"`
	LeaveClass        string `yaml:"leave_class,omitempty" koanf:"leave_class"`
	LeaveActiveClass  string `yaml:"leave_active_class,omitempty" koanf:"leave_active_class"`
	AppearClass       string `yaml:"appear_class,omitempty" koanf:"appear_class"`
	AppearActiveClass string `yaml:"appear_active_class,omitempty" koanf:"appear_active_class"`

	EnterDuration *time.Duration `yaml:"enter_duration,omitempty" koanf:"enter_duration"`
	LeaveDuration *time.Duration `yaml:"leave_duration,omitempty" koanf:"leave_duration"`

	// EnterCompletion and LeaveCompletion select, per direction, whether
	// the Enter or Leave hook signals completion through done.
	EnterCompletion CompletionMode `yaml:"-" koanf:"-" mapstructure:"-"`
	LeaveCompletion CompletionMode `yaml:"-" koanf:"-" mapstructure:"-"`
	Hooks           Hooks          `yaml:"-" koanf:"-" mapstructure:"-"`
}

// override returns d with every field set in o taking precedence.
func (d Definition) override(o Definition) Definition {
	out := d
	if o.Name != "" {
		out.Name = o.Name
	}
	if o.CSS != nil {
		out.CSS = o.CSS
	}
	if o.Appear != nil {
		out.Appear = o.Appear
	}
	setString(&out.EnterClass, o.EnterClass)
	setString(&out.EnterActiveClass, o.EnterActiveClass)
	setString(&out.LeaveClass, o.LeaveClass)
	setString(&out.LeaveActiveClass, o.LeaveActiveClass)
	setString(&out.AppearClass, o.AppearClass)
	setString(&out.AppearActiveClass, o.AppearActiveClass)
	if o.EnterDuration != nil {
		out.EnterDuration = o.EnterDuration
	}
	if o.LeaveDuration != nil {
		out.LeaveDuration = o.LeaveDuration
	}
	// A hook and its completion mode are replaced together.
	out.EnterCompletion = overrideMode(d.EnterCompletion, o.EnterCompletion, o.Hooks.Enter != nil)
	out.LeaveCompletion = overrideMode(d.LeaveCompletion, o.LeaveCompletion, o.Hooks.Leave != nil)
	out.Hooks = d.Hooks.merge(o.Hooks)
	return out
}

func overrideMode(base, o CompletionMode, hookSet bool) CompletionMode {
	if hookSet || o != CompletionTiming {
		return o
	}
	return base
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// SpecKind discriminates Spec.
type SpecKind uint8

const (
	SpecNone SpecKind = iota
	SpecNamed
	SpecInline
)

// Spec is a normalized transition prop: nothing, a name, or an inline
// definition. An empty name selects the default name.
type Spec struct {
	Kind   SpecKind
	Name   string
	Inline Definition
}

// Named returns a Spec referring to a registered definition.
func Named(name string) Spec {
	return Spec{Kind: SpecNamed, Name: name}
}

// InlineSpec returns a Spec carrying def.
func InlineSpec(def Definition) Spec {
	return Spec{Kind: SpecInline, Inline: def}
}

// Normalize converts a transition prop value into a Spec.
//
// Accepted values: nil or false (no transition), true (the default name),
// a string name, a Spec, a Definition or *Definition, and a map[string]any
// of definition fields. In a map, hooks are given as functions under their
// camel-case names ("beforeEnter", "leave", ...); an enter or leave hook of
// type func(host.Node, func()) selects CompletionCallback for its own
// direction only. Durations may be
// strings ("250ms") or numbers of milliseconds.
func Normalize(v any) (Spec, error) {
	switch val := v.(type) {
	case nil:
		return Spec{}, nil
	case bool:
		if !val {
			return Spec{}, nil
		}
		return Named(""), nil
	case string:
		return Named(strings.TrimSpace(val)), nil
	case Spec:
		return val, nil
	case Definition:
		return InlineSpec(val), nil
	case *Definition:
		if val == nil {
			return Spec{}, nil
		}
		return InlineSpec(*val), nil
	case map[string]any:
		def, err := decodeInline(val)
		if err != nil {
			return Spec{}, err
		}
		return InlineSpec(def), nil
	default:
		return Spec{}, errors.New("E121").WithDetailf("unsupported value of type %T", v)
	}
}

var hookKeys = map[string]bool{
	"beforeEnter":    true,
	"enter":          true,
	"afterEnter":     true,
	"enterCancelled": true,
	"beforeLeave":    true,
	"leave":          true,
	"afterLeave":     true,
	"leaveCancelled": true,
}

func decodeInline(m map[string]any) (Definition, error) {
	fields := make(map[string]any, len(m))
	var hooks Hooks
	modes := make(map[string]CompletionMode, 2)
	for key, value := range m {
		if !hookKeys[key] {
			fields[key] = value
			continue
		}
		mode, err := setHook(&hooks, key, value)
		if err != nil {
			return Definition{}, err
		}
		modes[key] = mode
	}

	var def Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &def,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return Definition{}, errors.New("E121").Wrap(err)
	}
	if err := dec.Decode(fields); err != nil {
		return Definition{}, errors.New("E121").Wrap(err)
	}
	def.Hooks = hooks
	def.EnterCompletion = modes["enter"]
	def.LeaveCompletion = modes["leave"]
	return def, nil
}

// setHook stores a hook taken from an inline map. It returns
// CompletionCallback when the hook takes a done callback.
func setHook(h *Hooks, key string, value any) (CompletionMode, error) {
	var plain func(host.Node)
	var withDone func(host.Node, func())
	switch fn := value.(type) {
	case nil:
		return CompletionTiming, nil
	case func(host.Node):
		plain = fn
	case func():
		plain = func(host.Node) { fn() }
	case func(host.Node, func()):
		if key != "enter" && key != "leave" {
			return CompletionTiming, errors.New("E121").WithDetailf("hook %q does not take a done callback", key)
		}
		withDone = fn
	default:
		return CompletionTiming, errors.New("E121").WithDetailf("hook %q has unsupported type %T", key, value)
	}

	if withDone == nil && (key == "enter" || key == "leave") {
		withDone = func(el host.Node, _ func()) { plain(el) }
	}
	switch key {
	case "beforeEnter":
		h.BeforeEnter = plain
	case "enter":
		h.Enter = withDone
	case "afterEnter":
		h.AfterEnter = plain
	case "enterCancelled":
		h.EnterCancelled = plain
	case "beforeLeave":
		h.BeforeLeave = plain
	case "leave":
		h.Leave = withDone
	case "afterLeave":
		h.AfterLeave = plain
	case "leaveCancelled":
		h.LeaveCancelled = plain
	}
	if plain != nil {
		return CompletionTiming, nil
	}
	return CompletionCallback, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// millisecondsHook decodes plain numbers into durations in milliseconds.
func millisecondsHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	default:
		return data, nil
	}
}
