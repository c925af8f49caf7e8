// Package debounce provides the cancellable quiet-interval timer shared by
// every input path that must coalesce rapid calls.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs only the most recently triggered function, once the quiet
// interval has elapsed without another Trigger.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// New creates a Debouncer. A non-positive interval runs triggers on the next
// timer tick without waiting.
func New(interval time.Duration) *Debouncer {
	if interval < 0 {
		interval = 0
	}
	return &Debouncer{interval: interval}
}

// Trigger schedules fn, replacing any pending function.
// It reports false once the Debouncer is stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		// A timer that already fired before Stop could win the race against
		// a newer Trigger; the generation check drops it.
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	return true
}

// Cancel drops the pending function, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	return pending
}

// Stop cancels the pending function and rejects later triggers.
func (d *Debouncer) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
