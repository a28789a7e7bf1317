package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
)

// Realtime is a wall-clock scheduler whose callbacks all run on the
// goroutine that calls Run. RequestFrame, SetTimer and Post may be called
// from any goroutine.
type Realtime struct {
	interval time.Duration
	tasks    chan func()
	done     chan struct{}
	stop     sync.Once
	logger   *slog.Logger

	mu     sync.Mutex
	frames []*frameTask
	after  func()
}

// NewRealtime creates a Realtime scheduler. A non-positive frame interval
// selects DefaultFrameInterval.
func NewRealtime(frameInterval time.Duration, logger *slog.Logger) *Realtime {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Realtime{
		interval: frameInterval,
		tasks:    make(chan func(), 256),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// FrameInterval returns the period between frames.
func (r *Realtime) FrameInterval() time.Duration {
	return r.interval
}

// AfterEach sets fn to run on the loop goroutine after every task and
// after every frame. It must be called before Run.
func (r *Realtime) AfterEach(fn func()) {
	r.after = fn
}

// Now implements host.Scheduler.
func (r *Realtime) Now() time.Time {
	return time.Now()
}

// Post queues fn to run on the loop goroutine. Once Run has returned, fn
// is dropped instead of blocking on a full queue.
func (r *Realtime) Post(fn func()) {
	select {
	case r.tasks <- fn:
	case <-r.done:
	}
}

// RequestFrame implements host.Scheduler.
func (r *Realtime) RequestFrame(fn func()) host.Cancel {
	task := &frameTask{fn: fn}
	r.mu.Lock()
	r.frames = append(r.frames, task)
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		task.cancelled = true
		r.mu.Unlock()
	}
}

// SetTimer implements host.Scheduler.
func (r *Realtime) SetTimer(d time.Duration, fn func()) host.Cancel {
	var (
		once      sync.Once
		cancelled bool
		mu        sync.Mutex
	)
	t := time.AfterFunc(d, func() {
		r.Post(func() {
			mu.Lock()
			skip := cancelled
			mu.Unlock()
			if !skip {
				once.Do(fn)
			}
		})
	})
	return func() {
		mu.Lock()
		cancelled = true
		mu.Unlock()
		t.Stop()
	}
}

// Run processes tasks and frames until ctx is done. A contract violation
// raised by a task stops the loop and propagates out of Run.
func (r *Realtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.stop.Do(func() { close(r.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.tasks:
			r.safe(fn)
			r.settle()
		case <-ticker.C:
			r.mu.Lock()
			queued := r.frames
			r.frames = nil
			r.mu.Unlock()
			for _, f := range queued {
				r.mu.Lock()
				skip := f.cancelled
				f.cancelled = true
				r.mu.Unlock()
				if !skip {
					r.safe(f.fn)
				}
			}
			r.settle()
		}
	}
}

func (r *Realtime) settle() {
	if r.after != nil {
		r.safe(r.after)
	}
}

// safe runs fn and logs a panic instead of killing the loop. Contract
// violations are re-raised.
func (r *Realtime) safe(fn func()) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if err, ok := p.(*errors.Error); ok && err.Category == errors.CategoryContract {
			panic(p)
		}
		r.logger.Error("loop task panicked", "panic", p)
	}()
	fn()
}
