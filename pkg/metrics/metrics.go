// Package metrics exports Prometheus metrics for patch calls, transition
// runs and mirror clients.
//
// A Collector implements both patch.Observer and transition.Observer:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	engine := patch.New(backend, mods, patch.WithObserver(m))
//	ctrl := transition.New(backend, sched, registry, transition.WithObserver(m))
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/transition"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "reconcile").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for patch and run durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reconcile",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the Prometheus metrics.
type Collector struct {
	patchesTotal  prometheus.Counter
	patchDuration prometheus.Histogram
	operations    *prometheus.CounterVec
	runsStarted   *prometheus.CounterVec
	runsFinished  *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runsActive    prometheus.Gauge
	hookFailures  *prometheus.CounterVec
	clientsActive prometheus.Gauge
	framesSent    prometheus.Counter
	frameBytes    prometheus.Counter
	wsErrors      *prometheus.CounterVec
}

var (
	_ patch.Observer      = (*Collector)(nil)
	_ transition.Observer = (*Collector)(nil)
)

// New creates a Collector and registers its metrics.
//
// Metrics collected:
//   - reconcile_patches_total: Counter of Patch calls
//   - reconcile_patch_duration_seconds: Histogram of Patch call duration
//   - reconcile_patch_operations_total: Counter of node operations by op
//   - reconcile_transition_runs_started_total: Counter of runs by name and direction
//   - reconcile_transition_runs_finished_total: Counter of runs by direction, outcome and trigger
//   - reconcile_transition_run_duration_seconds: Histogram of run duration by direction
//   - reconcile_transition_runs_active: Gauge of runs in flight
//   - reconcile_transition_hook_failures_total: Counter of panicking hooks
//   - reconcile_mirror_clients: Gauge of connected mirror clients
//   - reconcile_mirror_frames_sent_total: Counter of mutation frames sent
//   - reconcile_mirror_frame_bytes_total: Counter of mutation frame bytes sent
//   - reconcile_websocket_errors_total: Counter of WebSocket errors by type
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Collector{
		patchesTotal: counter("patches_total", "Total number of Patch calls"),
		patchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_duration_seconds",
			Help:        "Patch call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		operations: counterVec("patch_operations_total",
			"Total number of node operations performed by Patch calls", "op"),
		runsStarted: counterVec("transition_runs_started_total",
			"Total number of transition runs started", "name", "direction"),
		runsFinished: counterVec("transition_runs_finished_total",
			"Total number of transition runs finished", "direction", "outcome", "trigger"),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transition_run_duration_seconds",
			Help:        "Transition run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),
		runsActive:    gauge("transition_runs_active", "Number of transition runs in flight"),
		hookFailures:  counterVec("transition_hook_failures_total", "Total number of panicking transition hooks", "hook"),
		clientsActive: gauge("mirror_clients", "Number of connected mirror clients"),
		framesSent:    counter("mirror_frames_sent_total", "Total number of mutation frames sent to clients"),
		frameBytes:    counter("mirror_frame_bytes_total", "Total number of mutation frame bytes sent to clients"),
		wsErrors:      counterVec("websocket_errors_total", "Total WebSocket errors by type", "type"),
	}
}

// PatchDone implements patch.Observer.
func (c *Collector) PatchDone(elapsed time.Duration, stats patch.Stats) {
	c.patchesTotal.Inc()
	c.patchDuration.Observe(elapsed.Seconds())
	c.operations.WithLabelValues("create").Add(float64(stats.Creates))
	c.operations.WithLabelValues("update").Add(float64(stats.Updates))
	c.operations.WithLabelValues("remove").Add(float64(stats.Removes))
	c.operations.WithLabelValues("move").Add(float64(stats.Moves))
}

// RunStarted implements transition.Observer.
func (c *Collector) RunStarted(name string, dir transition.Direction) {
	c.runsStarted.WithLabelValues(name, dir.String()).Inc()
	c.runsActive.Inc()
}

// RunFinished implements transition.Observer.
func (c *Collector) RunFinished(r transition.Report) {
	dir := r.Direction.String()
	c.runsActive.Dec()
	c.runsFinished.WithLabelValues(dir, r.Outcome.String(), r.Trigger.String()).Inc()
	if r.Outcome == transition.OutcomeCompleted {
		c.runDuration.WithLabelValues(dir).Observe(r.Elapsed.Seconds())
	}
}

// HookFailed implements transition.Observer.
func (c *Collector) HookFailed(hook string) {
	c.hookFailures.WithLabelValues(hook).Inc()
}

// ClientConnected records a new mirror client.
func (c *Collector) ClientConnected() {
	c.clientsActive.Inc()
}

// ClientDisconnected records a mirror client going away.
func (c *Collector) ClientDisconnected() {
	c.clientsActive.Dec()
}

// FrameSent records a mutation frame of size bytes sent to a client.
func (c *Collector) FrameSent(size int) {
	c.framesSent.Inc()
	c.frameBytes.Add(float64(size))
}

// WebSocketError records a WebSocket error.
func (c *Collector) WebSocketError(errorType string) {
	c.wsErrors.WithLabelValues(errorType).Inc()
}
