package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/loop"
	"github.com/vango-dev/reconcile/pkg/host/memdom"
	"github.com/vango-dev/reconcile/pkg/modules"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/transition"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// flushLimit bounds the callbacks a virtual flush runs.
const flushLimit = 10_000

// Snapshot is the document markup at one point of a playback.
type Snapshot struct {
	Step  int           `json:"step"`
	Label string        `json:"label"`
	Time  time.Duration `json:"time"`
	HTML  string        `json:"html"`
}

type options struct {
	logger      *slog.Logger
	wrap        func(host.Backend) host.Backend
	definitions map[string]transition.Definition
	transition  []transition.Option
	engine      []patch.Option
	trace       bool
}

// Option configures a Player.
type Option func(*options)

// WithLogger sets the player logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBackend wraps the document backend before the engine and the
// transition controller are built on it.
func WithBackend(wrap func(host.Backend) host.Backend) Option {
	return func(o *options) { o.wrap = wrap }
}

// WithDefinitions registers base definitions. Definitions of the scenario
// with the same name replace them.
func WithDefinitions(defs map[string]transition.Definition) Option {
	return func(o *options) { o.definitions = defs }
}

// WithTransitionOptions passes options to the transition controller.
func WithTransitionOptions(opts ...transition.Option) Option {
	return func(o *options) { o.transition = append(o.transition, opts...) }
}

// WithEngineOptions passes options to the patch engine.
func WithEngineOptions(opts ...patch.Option) Option {
	return func(o *options) { o.engine = append(o.engine, opts...) }
}

// WithTrace records a snapshot after every step, labelled with the action.
func WithTrace(enabled bool) Option {
	return func(o *options) { o.trace = enabled }
}

// Player plays a scenario against an in-memory document.
type Player struct {
	file        *File
	driver      driver
	logger      *slog.Logger
	trace       bool
	doc         *memdom.Document
	backend     host.Backend
	engine      *patch.Engine
	transitions *transition.Controller
	root        *memdom.Node
	tree        *vdom.VNode
	pending     map[string][]func()
}

// NewPlayer creates a Player on a virtual clock using the scenario's
// frame interval.
func NewPlayer(f *File, opts ...Option) (*Player, error) {
	v := loop.NewVirtual(f.FrameInterval)
	return newPlayer(f, v, &virtualDriver{loop: v}, opts)
}

// NewLivePlayer creates a Player whose callbacks run on rt. The caller
// runs rt; Play blocks on it.
func NewLivePlayer(f *File, rt *loop.Realtime, opts ...Option) (*Player, error) {
	return newPlayer(f, rt, &liveDriver{loop: rt, start: time.Now()}, opts)
}

func newPlayer(f *File, sched host.Scheduler, d driver, opts []Option) (*Player, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Player{
		file:    f,
		driver:  d,
		logger:  o.logger,
		trace:   o.trace,
		pending: make(map[string][]func()),
	}
	registry, err := p.registry(o.definitions)
	if err != nil {
		return nil, err
	}

	p.doc = memdom.New(sched, f.Rules()...)
	p.backend = p.doc
	if o.wrap != nil {
		p.backend = o.wrap(p.doc)
	}
	topts := append([]transition.Option{transition.WithLogger(o.logger)}, o.transition...)
	p.transitions = transition.New(p.backend, sched, registry, topts...)
	eopts := append([]patch.Option{patch.WithLogger(o.logger)}, o.engine...)
	p.engine = patch.New(p.backend, append(modules.Default(p.backend), p.transitions), eopts...)

	p.root = p.doc.CreateElement("div", host.NamespaceHTML).(*memdom.Node)
	p.doc.InsertBefore(p.doc.Body(), p.root, nil)
	return p, nil
}

// registry builds the transition registry. Callback definitions get enter
// and leave hooks that park their done callbacks for done steps.
func (p *Player) registry(base map[string]transition.Definition) (*transition.Registry, error) {
	r := transition.NewRegistry()
	if err := r.RegisterAll(base); err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(p.file.Transitions) {
		def := p.file.Transitions[name]
		if def.Callback {
			def.EnterCompletion = transition.CompletionCallback
			def.LeaveCompletion = transition.CompletionCallback
			def.Hooks.Enter = p.park(name + ".enter")
			def.Hooks.Leave = p.park(name + ".leave")
		}
		if err := r.Register(name, def.Definition); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p *Player) park(key string) func(host.Node, func()) {
	return func(_ host.Node, done func()) {
		p.pending[key] = append(p.pending[key], done)
	}
}

// Root returns the element trees are mounted into.
func (p *Player) Root() *memdom.Node {
	return p.root
}

// Backend returns the backend the engine writes to.
func (p *Player) Backend() host.Backend {
	return p.backend
}

// Transitions returns the transition controller.
func (p *Player) Transitions() *transition.Controller {
	return p.transitions
}

// HTML returns the markup of the mounted tree. With a live player it must
// be called on the loop goroutine.
func (p *Player) HTML() string {
	return p.root.InnerHTML()
}

// Play runs every step in order and returns the recorded snapshots.
func (p *Player) Play(ctx context.Context) ([]Snapshot, error) {
	var snaps []Snapshot
	for i, step := range p.file.Steps {
		snap, err := p.Step(ctx, i, step)
		if err != nil {
			return snaps, err
		}
		if snap != nil {
			snaps = append(snaps, *snap)
		}
	}
	return snaps, nil
}

// Step runs one step. It returns a snapshot for snapshot steps, and for
// every step when tracing.
func (p *Player) Step(ctx context.Context, i int, step Step) (*Snapshot, error) {
	action, err := step.Action()
	if err != nil {
		return nil, p.file.stepError(err, i)
	}
	p.logger.Debug("scenario step", "step", i+1, "action", action, "elapsed", p.driver.elapsed())

	label := action
	switch action {
	case "render":
		node, err := p.file.Tree(step.Render)
		if err != nil {
			return nil, p.file.stepError(err, i)
		}
		err = p.driver.run(ctx, func() { p.render(ctx, node.Build()) })
		if err != nil {
			return nil, p.file.stepError(err, i)
		}
		label = "render " + step.Render
	case "unmount":
		err = p.driver.run(ctx, func() { p.render(ctx, nil) })
	case "frame":
		err = p.driver.frames(ctx, step.Frame)
	case "advance":
		err = p.driver.advance(ctx, step.Advance)
	case "flush":
		err = p.driver.flush(ctx, func() bool { return p.transitions.Runs() == 0 })
	case "snapshot":
		label = step.Snapshot
	case "done":
		err = p.driver.run(ctx, func() { p.done(step.Done) })
	}
	if err != nil {
		return nil, p.file.stepError(err, i)
	}

	if action != "snapshot" && !p.trace {
		return nil, nil
	}
	snap := &Snapshot{Step: i + 1, Label: label}
	err = p.driver.run(ctx, func() {
		snap.Time = p.driver.elapsed()
		snap.HTML = p.HTML()
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (p *Player) render(ctx context.Context, tree *vdom.VNode) {
	prev := p.tree
	p.tree = tree
	p.engine.PatchContext(ctx, prev, tree, p.root, nil)
}

// done invokes the oldest parked callback of key. A missing callback
// panics with E303, which the driver turns into the step error.
func (p *Player) done(key string) {
	queue := p.pending[key]
	if len(queue) == 0 {
		panic(errors.New("E303").WithDetailf("no pending %s callback", key))
	}
	next := queue[0]
	if len(queue) == 1 {
		delete(p.pending, key)
	} else {
		p.pending[key] = queue[1:]
	}
	next()
}

// Pending returns the number of parked callbacks for "name.enter" or
// "name.leave".
func (p *Player) Pending(key string) int {
	return len(p.pending[key])
}

// driver moves a Player's clock.
type driver interface {
	// run calls fn on the scheduler goroutine and recovers its panics.
	run(ctx context.Context, fn func()) error
	frames(ctx context.Context, n int) error
	advance(ctx context.Context, d time.Duration) error
	flush(ctx context.Context, idle func() bool) error
	elapsed() time.Duration
}

// recovered runs fn, converting a panic into an error.
func recovered(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("scenario: %v", r)
		}
	}()
	fn()
	return nil
}

type virtualDriver struct {
	loop *loop.Virtual
}

func (d *virtualDriver) run(_ context.Context, fn func()) error {
	return recovered(fn)
}

func (d *virtualDriver) frames(_ context.Context, n int) error {
	return recovered(func() {
		for i := 0; i < n; i++ {
			d.loop.Frame()
		}
	})
}

func (d *virtualDriver) advance(_ context.Context, dur time.Duration) error {
	return recovered(func() { d.loop.Advance(dur) })
}

func (d *virtualDriver) flush(_ context.Context, _ func() bool) error {
	return recovered(func() { d.loop.Flush(flushLimit) })
}

func (d *virtualDriver) elapsed() time.Duration {
	return d.loop.Elapsed()
}

type liveDriver struct {
	loop  *loop.Realtime
	start time.Time
}

func (d *liveDriver) run(ctx context.Context, fn func()) error {
	result := make(chan error, 1)
	d.loop.Post(func() { result <- recovered(fn) })
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *liveDriver) frames(ctx context.Context, n int) error {
	return sleep(ctx, time.Duration(n)*d.loop.FrameInterval())
}

func (d *liveDriver) advance(ctx context.Context, dur time.Duration) error {
	return sleep(ctx, dur)
}

func (d *liveDriver) flush(ctx context.Context, idle func() bool) error {
	for {
		var done bool
		if err := d.run(ctx, func() { done = idle() }); err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := sleep(ctx, d.loop.FrameInterval()); err != nil {
			return err
		}
	}
}

func (d *liveDriver) elapsed() time.Duration {
	return time.Since(d.start)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
