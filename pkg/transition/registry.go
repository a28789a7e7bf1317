package transition

import (
	stderrors "errors"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/internal/errors"
)

// Registry holds named transition definitions. It is an explicit value;
// there is no global registry.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds or replaces the definition stored under name.
func (r *Registry) Register(name string, def Definition) error {
	if err := validateDefinition(name, def); err != nil {
		return err
	}
	def.Name = name
	r.defs[name] = def
	return nil
}

// MustRegister is Register that panics on an invalid definition.
func (r *Registry) MustRegister(name string, def Definition) *Registry {
	if err := r.Register(name, def); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition registered under name. It is safe to call
// on a nil Registry.
func (r *Registry) Lookup(name string) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadYAML registers the definitions of a YAML mapping from name to
// definition fields. Hooks cannot be expressed in YAML.
//
//	fade:
//	  enter_active_class: fade-in
//	  leave_duration: 300ms
func (r *Registry) LoadYAML(rd io.Reader) error {
	var defs map[string]Definition
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.New("E202").WithDetail("decoding definitions").Wrap(err)
	}
	return r.RegisterAll(defs)
}

// RegisterAll registers every definition of defs, in name order.
func (r *Registry) RegisterAll(defs map[string]Definition) error {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, defs[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateDefinition(name string, def Definition) error {
	switch {
	case name == "":
		return errors.New("E202").WithDetail("empty name")
	case strings.ContainsAny(name, " \t\n"):
		return errors.New("E202").WithDetailf("name %q contains whitespace", name)
	case def.EnterDuration != nil && *def.EnterDuration < 0:
		return errors.New("E202").WithDetailf("%s: negative enter duration", name)
	case def.LeaveDuration != nil && *def.LeaveDuration < 0:
		return errors.New("E202").WithDetailf("%s: negative leave duration", name)
	}
	return nil
}
