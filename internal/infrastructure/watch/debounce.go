// Package watch re-runs exports when the project store changes on disk.
package watch

import (
	"sync"
	"time"
)

// Debouncer collapses a burst of store writes into one callback. A save
// produces several events (temp file, rename, SQLite journal) and only the
// settled state should be exported.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	pending  bool
	callback func()
}

func NewDebouncer(window time.Duration, callback func()) *Debouncer {
	return &Debouncer{window: window, callback: callback}
}

// Trigger restarts the window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Stop drops any scheduled callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.pending = false
	d.mu.Unlock()
	d.callback()
}
