// Package schedule turns a high-frequency stream of "tree changed"
// notifications into a bounded rate of scan passes.
package schedule

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Config for creating a Scheduler.
type Config struct {
	// Window is the debounce time. Default: 250ms.
	Window time.Duration
	Logger *slog.Logger
}

// Scheduler runs a pass once at start, then once after every burst of
// notifications followed by Window of silence. Passes run sequentially on
// the goroutine that called Run; a notification arriving during a pass
// arms a new window once the pass returns.
type Scheduler struct {
	window time.Duration
	pass   func()
	logger *slog.Logger

	notifications atomic.Int64
	passes        atomic.Int64
}

// New creates a Scheduler that calls pass.
func New(cfg Config, pass func()) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Scheduler{window: cfg.Window, pass: pass, logger: cfg.Logger}
}

// Stats are point-in-time counters.
type Stats struct {
	Notifications int64 `json:"notifications"`
	Passes        int64 `json:"passes"`
}

// Stats returns the current counters.
func (s *Scheduler) Stats() Stats {
	return Stats{Notifications: s.notifications.Load(), Passes: s.passes.Load()}
}

// Run blocks until ctx is cancelled or changes is closed. No pass starts
// after ctx is cancelled; a pass already running is not interrupted.
func (s *Scheduler) Run(ctx context.Context, changes <-chan struct{}) {
	s.fire()

	d := newDebouncer(s.window)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return

		case _, ok := <-changes:
			if !ok {
				s.logger.Debug("schedule: change stream closed")
				return
			}
			s.notifications.Add(1)
			d.add()

		case <-d.timerC():
			n := d.expired()
			if ctx.Err() != nil {
				return
			}
			s.logger.Debug("schedule: window expired", "notifications", n)
			s.fire()
		}
	}
}

func (s *Scheduler) fire() {
	s.passes.Add(1)
	s.pass()
}
