package loop

import (
	"sort"
	"time"

	"github.com/vango-dev/reconcile/pkg/host"
)

// DefaultFrameInterval is the frame period used when none is configured.
const DefaultFrameInterval = 16 * time.Millisecond

// Epoch is the start time of every Virtual scheduler.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type timer struct {
	seq       uint64
	due       time.Time
	fn        func()
	cancelled bool
}

type frameTask struct {
	fn        func()
	cancelled bool
}

// Virtual is a manually driven scheduler. It is not safe for concurrent use.
type Virtual struct {
	now       time.Time
	interval  time.Duration
	seq       uint64
	timers    []*timer
	frames    []*frameTask
	framesRun int
}

// NewVirtual creates a Virtual scheduler with the given frame interval.
// A non-positive interval selects DefaultFrameInterval.
func NewVirtual(frameInterval time.Duration) *Virtual {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Virtual{now: Epoch, interval: frameInterval}
}

// Now implements host.Scheduler.
func (v *Virtual) Now() time.Time {
	return v.now
}

// Elapsed returns the virtual time passed since Epoch.
func (v *Virtual) Elapsed() time.Duration {
	return v.now.Sub(Epoch)
}

// FramesRun returns the number of frame boundaries that ran callbacks.
func (v *Virtual) FramesRun() int {
	return v.framesRun
}

// RequestFrame implements host.Scheduler.
func (v *Virtual) RequestFrame(fn func()) host.Cancel {
	task := &frameTask{fn: fn}
	v.frames = append(v.frames, task)
	return func() { task.cancelled = true }
}

// SetTimer implements host.Scheduler.
func (v *Virtual) SetTimer(d time.Duration, fn func()) host.Cancel {
	if d < 0 {
		d = 0
	}
	v.seq++
	t := &timer{seq: v.seq, due: v.now.Add(d), fn: fn}
	v.timers = append(v.timers, t)
	return func() { t.cancelled = true }
}

// PendingFrames reports whether frame callbacks are queued.
func (v *Virtual) PendingFrames() bool {
	for _, f := range v.frames {
		if !f.cancelled {
			return true
		}
	}
	return false
}

// PendingTimers returns the number of live timers.
func (v *Virtual) PendingTimers() int {
	n := 0
	for _, t := range v.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// Frame advances to the next frame boundary, firing timers due before it,
// and runs the callbacks queued before the boundary. Timers due exactly at
// the boundary fire after the frame. Callbacks requested by
// those callbacks wait for the following frame.
func (v *Virtual) Frame() {
	boundary := v.nextBoundary()
	v.runTimersBefore(boundary)
	v.now = boundary
	v.runFrame()
}

// Advance moves time forward by d, firing timers and frames in time order.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now.Add(d)
	for {
		nextTimer, hasTimer := v.nextTimer()
		boundary := v.nextBoundary()
		frameDue := v.PendingFrames() && !boundary.After(target)

		switch {
		case hasTimer && !nextTimer.due.After(target) && (!frameDue || nextTimer.due.Before(boundary)):
			v.fire(nextTimer)
		case frameDue:
			v.now = boundary
			v.runFrame()
		default:
			v.now = target
			return
		}
	}
}

// Flush runs everything that is queued, frames and timers, until the loop is idle.
// It stops after limit steps to guard against self-rescheduling callbacks.
func (v *Virtual) Flush(limit int) {
	for i := 0; i < limit; i++ {
		nextTimer, hasTimer := v.nextTimer()
		switch {
		case v.PendingFrames() && (!hasTimer || !nextTimer.due.Before(v.nextBoundary())):
			v.Frame()
		case hasTimer:
			v.fire(nextTimer)
		default:
			return
		}
	}
}

func (v *Virtual) nextBoundary() time.Time {
	elapsed := v.now.Sub(Epoch)
	next := (elapsed/v.interval + 1) * v.interval
	return Epoch.Add(next)
}

func (v *Virtual) nextTimer() (*timer, bool) {
	v.compactTimers()
	if len(v.timers) == 0 {
		return nil, false
	}
	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].due.Equal(v.timers[j].due) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].due.Before(v.timers[j].due)
	})
	return v.timers[0], true
}

func (v *Virtual) compactTimers() {
	live := v.timers[:0]
	for _, t := range v.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	v.timers = live
}

func (v *Virtual) runTimersBefore(limit time.Time) {
	for {
		t, ok := v.nextTimer()
		if !ok || !t.due.Before(limit) {
			return
		}
		v.fire(t)
	}
}

func (v *Virtual) fire(t *timer) {
	if t.due.After(v.now) {
		v.now = t.due
	}
	t.cancelled = true
	t.fn()
}

func (v *Virtual) runFrame() {
	queued := v.frames
	v.frames = nil
	ran := false
	for _, f := range queued {
		if f.cancelled {
			continue
		}
		f.cancelled = true
		ran = true
		f.fn()
	}
	if ran {
		v.framesRun++
	}
}
