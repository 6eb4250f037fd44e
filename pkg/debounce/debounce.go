// Package debounce provides cancellable delayed tasks and a debouncer that
// keeps at most one outstanding task per key.
package debounce

import (
	"sync"
	"time"
)

// Task is a scheduled callback.
type Task interface {
	// Stop cancels the task. It reports false when the task already ran or
	// was stopped.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return time.AfterFunc(d, fn)
}

// Debouncer delays a callback until no Trigger happened for Delay. Every
// Trigger replaces the pending task; callbacks never accumulate.
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	task      Task
	pending   func()
	seq       uint64
}

// New returns a debouncer. A nil scheduler uses RealScheduler.
func New(scheduler Scheduler, delay time.Duration) *Debouncer {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	return &Debouncer{scheduler: scheduler, delay: delay}
}

// Trigger schedules fn after the quiet period, cancelling any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.task != nil {
		d.task.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.task = d.scheduler.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// fire runs the pending callback if seq is still current. A timer that
// raced a newer Trigger (Stop returned false) lands here with a stale seq.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.task = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.pending == nil {
		return false
	}
	if d.task != nil {
		d.task.Stop()
	}
	d.seq++
	d.task = nil
	d.pending = nil
	return true
}

// Flush runs the pending call now, on the caller's goroutine. It reports
// whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if !d.cancelLocked() {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	fn()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
