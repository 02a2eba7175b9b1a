package schedule

import "time"

// DefaultWindow is the quiet period required before a pass fires.
const DefaultWindow = 250 * time.Millisecond

// debouncer is a single-slot timer: every notification replaces the
// pending deadline, so a burst collapses into one expiry. It is owned by
// one goroutine and needs no locking.
type debouncer struct {
	window  time.Duration
	timer   *time.Timer
	timerCh <-chan time.Time
	pending int // notifications since the last expiry
}

func newDebouncer(window time.Duration) *debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &debouncer{window: window}
}

// add records a notification and (re)starts the window.
func (d *debouncer) add() {
	d.pending++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.NewTimer(d.window)
	d.timerCh = d.timer.C
}

// timerC returns the channel that fires when the window expires. It is
// nil while nothing is pending, which blocks forever in a select.
func (d *debouncer) timerC() <-chan time.Time {
	return d.timerCh
}

// expired clears the slot after timerC fired and returns how many
// notifications the window absorbed.
func (d *debouncer) expired() int {
	n := d.pending
	d.pending = 0
	d.timer = nil
	d.timerCh = nil
	return n
}

// stop drops any pending expiry.
func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.timerCh = nil
	d.pending = 0
}
