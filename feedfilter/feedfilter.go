// Package feedfilter removes unwanted posts from the X home timeline as it
// renders. A Filter drives a Chrome tab (or any dom.Host), follows the
// page's navigation, and while the home feed is shown classifies every
// new timeline cell: posts matching an enabled predicate are emptied and
// marked removed, the rest are marked kept. Each cell is decided once.
package feedfilter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/browser"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/navigation"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/panel"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/predicate"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/sink"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
)

// Store is the persistent key-value store holding the toggles.
type Store = toggles.Store

// Status is a snapshot of the navigation monitor.
type Status = navigation.Status

// OpenStore opens the SQLite toggle store at path.
func OpenStore(path string) (*toggles.SQLiteStore, error) {
	return toggles.OpenSQLite(path)
}

// NewMemoryStore returns an in-memory toggle store.
func NewMemoryStore(initial map[string]any) Store {
	return toggles.NewMemoryStore(initial)
}

// Filter is the top-level orchestrator: browser, monitor, sinks.
type Filter struct {
	cfg    *Config
	store  Store
	sinkR  *sink.Fanout
	preds  *predicate.Set
	logger *slog.Logger

	mu  sync.Mutex
	mon *navigation.Monitor
}

// New creates a Filter. Decisions and session events go to sinks, each
// through its own delivery queue so a slow sink never holds up a scan.
func New(cfg *Config, store Store, logger *slog.Logger, sinks ...Sink) *Filter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	queued := make([]sink.Sink, len(sinks))
	for i, s := range sinks {
		queued[i] = sink.NewQueue(s, fmt.Sprintf("sinks[%d]", i), sink.DefaultQueueSize, logger)
	}
	return &Filter{
		cfg:   cfg,
		store: store,
		sinkR: sink.NewFanout(logger, queued...),
		preds: predicate.NewSet(predicate.Options{
			MaxOneLiner: cfg.Feed.MaxOneLiner,
			MaxAge:      cfg.Feed.MaxAge,
		}),
		logger: logger,
	}
}

// Run launches Chrome, opens the start URL and filters until ctx is done.
func (f *Filter) Run(ctx context.Context) error {
	mode, err := browser.ParseMode(f.cfg.Browser.Stealth)
	if err != nil {
		return err
	}
	mgr := browser.NewManager(browser.Config{
		RemoteURL:        f.cfg.Browser.Remote,
		Mode:             mode,
		XvfbDisplay:      f.cfg.Browser.XvfbDisplay,
		UserDataDir:      f.cfg.Browser.UserDataDir,
		ResourceBlocking: f.cfg.Browser.ResourceBlocking,
		Logger:           f.logger,
	})
	defer mgr.Close()

	if _, err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("feedfilter: start browser: %w", err)
	}
	tab, err := browser.OpenTab(ctx, mgr, f.cfg.Browser.StartURL)
	if err != nil {
		return fmt.Errorf("feedfilter: open tab: %w", err)
	}
	defer tab.Close()

	f.logger.Info("feedfilter: tab open", "url", f.cfg.Browser.StartURL)
	return f.Watch(ctx, tab)
}

// Watch filters host until ctx is done. Only one Watch runs at a time.
func (f *Filter) Watch(ctx context.Context, host dom.Host) error {
	mon, err := navigation.New(navigation.Config{
		Host:          host,
		Store:         f.store,
		FeedURLs:      f.cfg.Feed.URLs,
		PollInterval:  f.cfg.Feed.PollInterval,
		RetryInterval: f.cfg.Feed.RetryInterval,
		Debounce:      f.cfg.Feed.Debounce,
		Predicates:    f.preds,
		BatchLimit:    f.cfg.Feed.BatchLimit,
		Sink:          f.sinkR,
		Logger:        f.logger,
	})
	if err != nil {
		return fmt.Errorf("feedfilter: %w", err)
	}

	f.mu.Lock()
	if f.mon != nil {
		f.mu.Unlock()
		return errors.New("feedfilter: already watching")
	}
	f.mon = mon
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.mon = nil
		f.mu.Unlock()
	}()
	return mon.Run(ctx)
}

// Status returns the monitor snapshot, off the feed when not watching.
func (f *Filter) Status() Status {
	f.mu.Lock()
	mon := f.mon
	f.mu.Unlock()
	if mon == nil {
		return Status{State: navigation.StateOffFeed}
	}
	return mon.Status()
}

// Handler returns the HTTP toggle panel.
func (f *Filter) Handler() http.Handler {
	return panel.New(panel.Config{
		Store:  f.store,
		Status: func() any { return f.Status() },
		Logger: f.logger,
	})
}

// Close delivers queued events and closes the sinks.
func (f *Filter) Close() error {
	return f.sinkR.Close()
}
