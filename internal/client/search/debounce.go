package search

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period after the last keystroke before the
// filter is recomputed.
const DefaultWindow = 300 * time.Millisecond

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by time.AfterFunc.
var RealClock Clock = realClock{}

// Debouncer runs the most recently triggered action once the window has
// passed without another trigger. At most one timer is pending at a time.
type Debouncer struct {
	window time.Duration
	clock  Clock

	mu    sync.Mutex
	timer Timer
	seq   uint64
}

func NewDebouncer(window time.Duration, clock Clock) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{window: window, clock: clock}
}

// Trigger replaces any pending action with fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.window, func() { d.fire(seq, fn) })
}

// Cancel drops the pending action, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending reports whether an action is waiting for its window to pass.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// fire runs fn unless a later Trigger or Cancel superseded it. A timer can
// fire concurrently with Stop, so the sequence check is what guarantees
// superseded actions never run.
func (d *Debouncer) fire(seq uint64, fn func()) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	fn()
}
