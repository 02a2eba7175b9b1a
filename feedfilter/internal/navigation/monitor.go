// Package navigation watches the page location and runs one observation
// session while the page shows the home feed.
package navigation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/metrics"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/predicate"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/sink"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// DefaultFeedURLs are the locations treated as the home feed.
var DefaultFeedURLs = []string{"https://twitter.com/home", "https://x.com/home"}

// Config for creating a Monitor.
type Config struct {
	Host  dom.Host
	Store toggles.Store

	// FeedURLs are matched exactly against the location. Default: DefaultFeedURLs.
	FeedURLs []string
	// PollInterval between location checks. Default: 500ms.
	PollInterval time.Duration
	// RetryInterval between attempts to find the feed container. Default: 1s.
	RetryInterval time.Duration
	// Debounce window of the mutation scheduler. Default: 250ms.
	Debounce time.Duration

	Predicates *predicate.Set
	BatchLimit int
	Sink       sink.Sink
	Logger     *slog.Logger
}

func (c *Config) defaults() {
	if len(c.FeedURLs) == 0 {
		c.FeedURLs = DefaultFeedURLs
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = time.Second
	}
	if c.Predicates == nil {
		c.Predicates = predicate.NewSet(predicate.Options{})
	}
	if c.Sink == nil {
		c.Sink = sink.Discard{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// State is the monitor's view of the current location.
type State string

const (
	StateOffFeed State = "off_feed"
	StateOnFeed  State = "on_feed"
)

// Monitor owns the navigation state and at most one session.
type Monitor struct {
	cfg   Config
	feeds map[string]bool

	mu          sync.Mutex
	location    string
	state       State
	navigations int64
	current     *session
	last        *SessionStatus // most recent session, kept after it ends
}

// New creates a Monitor. Host and Store are required.
func New(cfg Config) (*Monitor, error) {
	if cfg.Host == nil {
		return nil, errors.New("navigation: nil host")
	}
	if cfg.Store == nil {
		return nil, errors.New("navigation: nil toggle store")
	}
	cfg.defaults()
	feeds := make(map[string]bool, len(cfg.FeedURLs))
	for _, u := range cfg.FeedURLs {
		feeds[u] = true
	}
	return &Monitor{cfg: cfg, feeds: feeds, state: StateOffFeed}, nil
}

// IsFeed reports whether u is one of the feed locations. No normalisation
// is applied: a query string or trailing slash is not the feed.
func (m *Monitor) IsFeed(u string) bool { return m.feeds[u] }

// Run checks the location immediately, then on every poll tick and every
// host nudge, until ctx is cancelled. The active session is torn down
// before Run returns. One failed session never stops the loop.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	var nudges <-chan struct{}
	if n, ok := m.cfg.Host.(dom.Nudger); ok {
		nudges = n.Nudges()
	}

	defer m.stopSession()

	var lastURL string
	m.check(ctx, &lastURL)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.check(ctx, &lastURL)
		case <-nudges:
			m.check(ctx, &lastURL)
		}
	}
}

func (m *Monitor) check(ctx context.Context, lastURL *string) {
	u, err := m.cfg.Host.Location(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.cfg.Logger.Debug("navigation: read location", "error", err)
		}
		return
	}
	if u == *lastURL {
		return
	}
	*lastURL = u
	metrics.Navigations.Inc()

	onFeed := m.IsFeed(u)
	m.cfg.Logger.Info("navigation: location changed", "url", u, "feed", onFeed)

	m.mu.Lock()
	m.navigations++
	m.location = u
	m.state = StateOffFeed
	if onFeed {
		m.state = StateOnFeed
	}
	m.mu.Unlock()

	m.stopSession()
	if onFeed {
		m.startSession(ctx, u)
	}
}

func (m *Monitor) startSession(parent context.Context, u string) {
	sctx, cancel := context.WithCancel(parent)
	s := &session{
		id:      verdict.NewID(),
		url:     u,
		cancel:  cancel,
		done:    make(chan struct{}),
		monitor: m,
		parent:  parent,
		status: SessionStatus{
			Phase:     PhaseWaiting,
			StartedAt: time.Now(),
		},
	}
	s.status.ID = s.id
	s.status.PageURL = u

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	go func() {
		defer close(s.done)
		s.run(sctx)
	}()
}

// stopSession cancels the current session and waits until its goroutine
// has exited, so nothing it scheduled can touch the tree afterwards.
func (m *Monitor) stopSession() {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()
	if s == nil {
		return
	}

	s.cancel()
	<-s.done

	if s.started {
		s.emit(context.WithoutCancel(s.parent), verdict.SessionStopped, nil, "")
		metrics.Sessions.WithLabelValues("stopped").Inc()
		m.cfg.Logger.Info("navigation: session stopped", "session", s.id, "url", s.url)
	}

	m.mu.Lock()
	if s.status.Phase != PhaseAborted {
		s.status.Phase = PhaseStopped
	}
	last := s.status
	m.last = &last
	m.mu.Unlock()
}
