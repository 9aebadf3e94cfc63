// Package scheduler coalesces bursts of change notifications into a single
// recompute per quiet window.
package scheduler

import (
	"sync"
	"time"
)

// Debouncer marks derived state dirty and runs fn once the inputs have been quiet
// for the configured window. A zero window runs fn synchronously on every Mark.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu      sync.Mutex
	timer   *time.Timer
	dirty   bool
	stopped bool

	// runMu serializes fn and lets Flush wait for an in-flight run.
	runMu sync.Mutex
}

// NewDebouncer creates a debouncer that calls fn at most once per quiet window.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Mark records that inputs changed. Any pending timer is superseded.
func (d *Debouncer) Mark() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.dirty = true
	if d.window <= 0 {
		d.mu.Unlock()
		d.run()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.run)
	d.mu.Unlock()
}

// Flush runs fn now if a recompute is pending, waiting for any run already in progress.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.run()
}

// Pending reports whether a recompute is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Stop cancels any pending run. Later Marks are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.dirty = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	if !d.dirty {
		d.mu.Unlock()
		return
	}
	d.dirty = false
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
