package viewport

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into one trailing invocation.
// Container resize events use roughly 100ms, scroll-driven current-page
// tracking a shorter interval.
type Debouncer struct {
	mu    sync.Mutex
	d     time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given trailing delay.
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{d: d}
}

// Trigger schedules fn after the delay, replacing any pending call.
func (db *Debouncer) Trigger(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.timer != nil {
		db.timer.Stop()
	}
	db.timer = time.AfterFunc(db.d, fn)
}

// Stop cancels any pending invocation.
func (db *Debouncer) Stop() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.timer != nil {
		db.timer.Stop()
		db.timer = nil
	}
}
