package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/transition"
)

// File is a parsed scenario.
type File struct {
	Name          string                `yaml:"name"`
	FrameInterval time.Duration         `yaml:"frame_interval"`
	Stylesheet    map[string]Timing     `yaml:"stylesheet"`
	Transitions   map[string]Definition `yaml:"transitions"`
	Trees         map[string]*Node      `yaml:"trees"`
	Steps         []Step                `yaml:"steps"`

	path  string
	lines []int
}

// Timing is the computed timing a stylesheet class contributes.
type Timing struct {
	Transition      time.Duration `yaml:"transition"`
	TransitionDelay time.Duration `yaml:"transition_delay"`
	// Properties is the number of transitioned properties. Defaults to 1.
	Properties     int           `yaml:"properties"`
	Animation      time.Duration `yaml:"animation"`
	AnimationDelay time.Duration `yaml:"animation_delay"`
	// Animations is the number of animations. Defaults to 1.
	Animations int `yaml:"animations"`
}

// Host converts t to the timing used by the document.
func (t Timing) Host() host.Timing {
	out := host.Timing{
		TransitionDuration: t.Transition,
		TransitionDelay:    t.TransitionDelay,
		AnimationDuration:  t.Animation,
		AnimationDelay:     t.AnimationDelay,
	}
	if t.Transition > 0 {
		out.TransitionProps = max(t.Properties, 1)
	}
	if t.Animation > 0 {
		out.AnimationCount = max(t.Animations, 1)
	}
	return out
}

// Definition is a named transition definition. With Callback set, the
// enter and leave runs complete only through done steps.
type Definition struct {
	transition.Definition `yaml:",inline"`

	Callback bool `yaml:"callback"`
}

// Step is one scenario action. Exactly one field must be set.
type Step struct {
	// Render patches the named tree against the current one.
	Render string `yaml:"render"`
	// Unmount patches the current tree against nothing.
	Unmount bool `yaml:"unmount"`
	// Frame runs the given number of frames.
	Frame int `yaml:"frame"`
	// Advance moves time forward.
	Advance time.Duration `yaml:"advance"`
	// Flush runs until no transition is in flight.
	Flush bool `yaml:"flush"`
	// Snapshot records the document under a label.
	Snapshot string `yaml:"snapshot"`
	// Done invokes the oldest pending completion callback of a callback
	// transition, given as "name.enter" or "name.leave".
	Done string `yaml:"done"`
}

// Action returns the name of the field set in s.
func (s Step) Action() (string, error) {
	var actions []string
	if s.Render != "" {
		actions = append(actions, "render")
	}
	if s.Unmount {
		actions = append(actions, "unmount")
	}
	if s.Frame != 0 {
		actions = append(actions, "frame")
	}
	if s.Advance != 0 {
		actions = append(actions, "advance")
	}
	if s.Flush {
		actions = append(actions, "flush")
	}
	if s.Snapshot != "" {
		actions = append(actions, "snapshot")
	}
	if s.Done != "" {
		actions = append(actions, "done")
	}
	switch len(actions) {
	case 1:
		return actions[0], nil
	case 0:
		return "", errors.New("E300").WithDetail("no action")
	default:
		return "", errors.New("E300").WithDetailf("several actions: %s", strings.Join(actions, ", "))
	}
}

// callbackKey parses a done target.
func callbackKey(target string) (string, error) {
	name, dir, ok := strings.Cut(target, ".")
	if !ok || name == "" || (dir != "enter" && dir != "leave") {
		return "", errors.New("E300").WithDetailf("done target %q is not name.enter or name.leave", target)
	}
	return target, nil
}

// Load reads and parses a scenario file. Step errors point at the step's
// line in the file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E302").WithDetailf("reading %s", path).Wrap(err)
	}
	return parse(data, path)
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("E302").Wrap(err)
	}
	return parse(data, "")
}

func parse(data []byte, path string) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.New("E302").WithDetail("empty scenario")
		}
		return nil, errors.New("E302").Wrap(err)
	}

	// A second, lenient pass records where each step starts.
	var positions struct {
		Steps []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &positions); err == nil {
		for _, n := range positions.Steps {
			f.lines = append(f.lines, n.Line)
		}
	}
	f.path = path

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks trees and steps.
func (f *File) Validate() error {
	for _, name := range sortedKeys(f.Trees) {
		if err := f.Trees[name].validate(name); err != nil {
			return err
		}
	}
	for i, step := range f.Steps {
		if err := f.validateStep(step); err != nil {
			return f.stepError(err, i)
		}
	}
	for _, name := range sortedKeys(f.Stylesheet) {
		t := f.Stylesheet[name]
		if t.Transition < 0 || t.Animation < 0 || t.TransitionDelay < 0 || t.AnimationDelay < 0 {
			return errors.New("E302").WithDetailf("stylesheet class %q has a negative duration", name)
		}
	}
	return nil
}

func (f *File) validateStep(step Step) error {
	action, err := step.Action()
	if err != nil {
		return err
	}
	switch action {
	case "render":
		if _, ok := f.Trees[step.Render]; !ok {
			return errors.New("E301").WithDetailf("render %q", step.Render)
		}
	case "frame":
		if step.Frame < 0 {
			return errors.New("E300").WithDetail("negative frame count")
		}
	case "advance":
		if step.Advance < 0 {
			return errors.New("E300").WithDetail("negative advance")
		}
	case "done":
		if _, err := callbackKey(step.Done); err != nil {
			return err
		}
	}
	return nil
}

// stepError prefixes err with the step number and, when the file is
// known, its location.
func (f *File) stepError(err error, i int) error {
	e, ok := err.(*errors.Error)
	if !ok {
		return err
	}
	e.Detail = fmt.Sprintf("step %d: %s", i+1, e.Detail)
	if f.path != "" && i < len(f.lines) {
		e.WithLocation(f.path, f.lines[i], 0)
	}
	return e
}

// Rules returns the stylesheet as document rules, in class order.
func (f *File) Rules() []memdom.Rule {
	rules := make([]memdom.Rule, 0, len(f.Stylesheet))
	for _, class := range sortedKeys(f.Stylesheet) {
		rules = append(rules, memdom.Rule{Class: class, Timing: f.Stylesheet[class].Host()})
	}
	return rules
}

// CSS renders the stylesheet as CSS rules for a browser page.
func (f *File) CSS() string {
	var b strings.Builder
	for _, class := range sortedKeys(f.Stylesheet) {
		t := f.Stylesheet[class]
		fmt.Fprintf(&b, ".%s {", class)
		if t.Transition > 0 {
			fmt.Fprintf(&b, " transition: all %s %s;", cssTime(t.Transition), cssTime(t.TransitionDelay))
		}
		if t.Animation > 0 {
			fmt.Fprintf(&b, " animation-duration: %s; animation-delay: %s;", cssTime(t.Animation), cssTime(t.AnimationDelay))
		}
		b.WriteString(" }\n")
	}
	return b.String()
}

func cssTime(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// Tree returns the named tree.
func (f *File) Tree(name string) (*Node, error) {
	n, ok := f.Trees[name]
	if !ok {
		return nil, errors.New("E301").WithDetailf("tree %q", name)
	}
	return n, nil
}

// TreeNames returns the tree names in sorted order.
func (f *File) TreeNames() []string {
	return sortedKeys(f.Trees)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
