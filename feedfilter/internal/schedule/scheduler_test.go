package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_NilChannelWhenIdle(t *testing.T) {
	d := newDebouncer(0)
	if d.window != DefaultWindow {
		t.Errorf("window: got %v, want %v", d.window, DefaultWindow)
	}
	if d.timerC() != nil {
		t.Error("idle debouncer should expose a nil channel")
	}
	d.add()
	d.add()
	if d.timerC() == nil {
		t.Fatal("pending debouncer should expose a channel")
	}
	d.stop()
	if d.timerC() != nil || d.pending != 0 {
		t.Error("stop should clear the slot")
	}
}

func TestDebouncer_ExpiredCountsBurst(t *testing.T) {
	d := newDebouncer(5 * time.Millisecond)
	for i := 0; i < 10; i++ {
		d.add()
	}
	select {
	case <-d.timerC():
	case <-time.After(time.Second):
		t.Fatal("window never expired")
	}
	if n := d.expired(); n != 10 {
		t.Errorf("expired: got %d, want 10", n)
	}
	if d.timerC() != nil {
		t.Error("slot not cleared after expiry")
	}
}

func run(t *testing.T, window time.Duration) (*Scheduler, chan struct{}, *atomic.Int32, context.CancelFunc, chan struct{}) {
	t.Helper()
	var passes atomic.Int32
	s := New(Config{Window: window}, func() { passes.Add(1) })
	changes := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, changes)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, changes, &passes, cancel, done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestRun_ImmediatePass(t *testing.T) {
	_, _, passes, _, _ := run(t, time.Hour)
	waitFor(t, func() bool { return passes.Load() == 1 })
}

func TestRun_BurstCollapses(t *testing.T) {
	window := 40 * time.Millisecond
	s, changes, passes, _, _ := run(t, window)
	waitFor(t, func() bool { return passes.Load() == 1 })

	// Ten notifications 5ms apart: each resets the window.
	for i := 0; i < 10; i++ {
		changes <- struct{}{}
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, func() bool { return passes.Load() == 2 })

	time.Sleep(3 * window)
	if got := passes.Load(); got != 2 {
		t.Errorf("passes: got %d, want 2 (burst must collapse into one pass)", got)
	}
	if st := s.Stats(); st.Notifications != 10 || st.Passes != 2 {
		t.Errorf("stats: %+v", st)
	}
}

func TestRun_NoPassBeforeQuietWindow(t *testing.T) {
	_, changes, passes, _, _ := run(t, 200*time.Millisecond)
	waitFor(t, func() bool { return passes.Load() == 1 })

	changes <- struct{}{}
	time.Sleep(50 * time.Millisecond)
	if got := passes.Load(); got != 1 {
		t.Errorf("pass fired before the window elapsed: %d", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	_, changes, passes, cancel, done := run(t, 10*time.Millisecond)
	waitFor(t, func() bool { return passes.Load() == 1 })

	changes <- struct{}{}
	cancel()
	<-done

	time.Sleep(30 * time.Millisecond)
	if got := passes.Load(); got != 1 {
		t.Errorf("passes after cancel: got %d, want 1", got)
	}
}

func TestRun_StopsWhenChangesClosed(t *testing.T) {
	s := New(Config{Window: time.Millisecond}, func() {})
	changes := make(chan struct{})
	close(changes)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), changes)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the change stream closed")
	}
}
