package navigation

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/metrics"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/scan"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/schedule"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Phase of an observation session.
type Phase string

const (
	PhaseWaiting Phase = "waiting_container"
	PhaseActive  Phase = "active"
	PhaseAborted Phase = "aborted"
	PhaseStopped Phase = "stopped"
)

var errNoContainer = errors.New("feed container not rendered")

// session is one observation of the feed, from entry to departure.
type session struct {
	id      string
	url     string
	cancel  context.CancelFunc
	done    chan struct{}
	monitor *Monitor
	parent  context.Context // monitor context; scans and final events use it

	// Written by the session goroutine, read after done is closed.
	started bool

	// Guarded by monitor.mu.
	status SessionStatus
}

// run waits for the container, reads the toggles once, then drives the
// scheduler until ctx is cancelled. Scans run under parent so a pass in
// flight when the session is cancelled completes.
func (s *session) run(ctx context.Context) {
	parent := s.parent
	log := s.monitor.cfg.Logger.With("session", s.id, "url", s.url)

	container, err := s.waitContainer(ctx)
	if err != nil {
		return // left the feed before it rendered
	}

	t, err := toggles.Load(ctx, s.monitor.cfg.Store)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("navigation: load toggles, session aborted", "error", err)
		s.abort(parent, err)
		return
	}

	changes, unobserve, err := container.Observe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("navigation: observe feed, session aborted", "error", err)
		s.abort(parent, err)
		return
	}
	defer unobserve()

	s.started = true
	s.update(func(st *SessionStatus) {
		st.Phase = PhaseActive
		st.Toggles = &t
	})
	s.emit(parent, verdict.SessionStarted, &t, "")
	metrics.Sessions.WithLabelValues("started").Inc()
	log.Info("navigation: session started", "toggles", t)

	pass := scan.New(scan.Config{
		Predicates: s.monitor.cfg.Predicates,
		Sink:       s.monitor.cfg.Sink,
		BatchLimit: s.monitor.cfg.BatchLimit,
		SessionID:  s.id,
		PageURL:    s.url,
		Logger:     s.monitor.cfg.Logger,
	})
	sched := schedule.New(schedule.Config{Window: s.monitor.cfg.Debounce, Logger: s.monitor.cfg.Logger}, func() {
		res, err := pass.Run(parent, container, t)
		s.update(func(st *SessionStatus) {
			st.Passes++
			st.Kept += int64(res.Kept)
			st.Removed += int64(res.Removed)
		})
		if err != nil && parent.Err() == nil {
			log.Warn("navigation: scan pass failed", "error", err)
		}
	})
	sched.Run(ctx, changes)
}

func (s *session) waitContainer(ctx context.Context) (dom.Container, error) {
	var container dom.Container
	op := func() error {
		c, ok, err := s.monitor.cfg.Host.Feed(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNoContainer
		}
		container = c
		return nil
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(s.monitor.cfg.RetryInterval), ctx)
	err := backoff.RetryNotify(op, b, func(err error, next time.Duration) {
		s.monitor.cfg.Logger.Debug("navigation: feed container not found, retrying",
			"session", s.id, "error", err, "next", next)
	})
	if err != nil {
		return nil, err
	}
	return container, nil
}

func (s *session) abort(ctx context.Context, cause error) {
	s.update(func(st *SessionStatus) {
		st.Phase = PhaseAborted
		st.Error = cause.Error()
	})
	s.emit(ctx, verdict.SessionAborted, nil, cause.Error())
	metrics.Sessions.WithLabelValues("aborted").Inc()
}

func (s *session) emit(ctx context.Context, typ verdict.SessionEventType, t *verdict.Toggles, errMsg string) {
	e := verdict.SessionEvent{
		ID:        verdict.NewID(),
		SessionID: s.id,
		Type:      typ,
		PageURL:   s.url,
		Toggles:   t,
		Error:     errMsg,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.monitor.cfg.Sink.SendSession(ctx, e); err != nil {
		s.monitor.cfg.Logger.Warn("navigation: send session event failed", "type", typ, "error", err)
	}
}

func (s *session) update(fn func(*SessionStatus)) {
	s.monitor.mu.Lock()
	fn(&s.status)
	s.monitor.mu.Unlock()
}
