package patch

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used when none is configured.
const DefaultTracerName = "github.com/vango-dev/reconcile/pkg/patch"

// Stats counts the structural work done by one Patch call.
type Stats struct {
	Creates int
	Updates int
	Removes int
	Moves   int
}

// Mutations returns the number of structural operations.
func (s Stats) Mutations() int {
	return s.Creates + s.Removes + s.Moves
}

// Observer receives a summary of every Patch call.
type Observer interface {
	PatchDone(elapsed time.Duration, stats Stats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(elapsed time.Duration, stats Stats)

// PatchDone implements Observer.
func (f ObserverFunc) PatchDone(elapsed time.Duration, stats Stats) {
	f(elapsed, stats)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for patch spans. The default resolves
// DefaultTracerName from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

func defaultEngine() *Engine {
	return &Engine{
		logger: slog.Default(),
		tracer: otel.Tracer(DefaultTracerName),
	}
}
