// Package debounce delays an action until calls have stopped for a settle period.
package debounce

import (
	"sync"
	"time"

	"github.com/mmcdole/kiosk/internal/clock"
)

// DefaultDelay is the settle time for search input
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs the most recently triggered action once no new trigger has
// arrived for delay. Each Trigger restarts the wait.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

// New creates a Debouncer. A nil clock uses real time.
func New(delay time.Duration, clk clock.Clock) *Debouncer {
	if clk == nil {
		clk = clock.Real()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger schedules fn, discarding any action still waiting
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		// A timer that fired while being replaced must not run
		if current {
			fn()
		}
	})
}

// Cancel drops the pending action, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether an action is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
