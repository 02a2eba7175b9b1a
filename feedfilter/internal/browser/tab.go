package browser

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
)

const bindingName = "__leanbrew_mutation"

//go:embed observe.js
var observeJS string

const unobserveJS = `(token) => {
	const registry = window.__leanbrew_observers;
	if (registry && registry[token]) {
		registry[token].disconnect();
		delete registry[token];
	}
}`

// Tab is a stealth page showing the timeline. It implements dom.Host and
// dom.Nudger.
type Tab struct {
	page   *rod.Page
	router *rod.HijackRouter
	logger *slog.Logger
	cancel context.CancelFunc

	subs   *subscriptions
	nudges chan struct{}
}

// OpenTab creates a stealth page, installs the mutation binding and
// navigates to startURL.
func OpenTab(ctx context.Context, mgr *Manager, startURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	evCtx, cancel := context.WithCancel(context.Background())
	t := &Tab{
		page:   page,
		logger: mgr.cfg.Logger,
		cancel: cancel,
		subs:   newSubscriptions(),
		nudges: make(chan struct{}, 1),
	}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		router, err := blockResources(page, mgr.cfg.ResourceBlocking)
		if err != nil {
			t.logger.Warn("browser: resource blocking failed", "error", err)
		}
		t.router = router
	}

	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(page); err != nil {
		t.Close()
		return nil, fmt.Errorf("browser: add binding: %w", err)
	}
	go t.listen(evCtx)

	navCtx, navCancel := context.WithTimeout(ctx, 30*time.Second)
	defer navCancel()
	if err := page.Context(navCtx).Navigate(startURL); err != nil {
		t.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", startURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		t.logger.Warn("browser: wait load timeout", "url", startURL, "error", err)
	}
	return t, nil
}

// listen routes binding calls to subscriptions and turns in-page
// navigations into nudges.
func (t *Tab) listen(ctx context.Context) {
	t.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeBindingCalled) {
			if e.Name == bindingName {
				t.subs.dispatch(e.Payload)
			}
		},
		func(e *proto.PageNavigatedWithinDocument) {
			t.nudge()
		},
		func(e *proto.PageFrameNavigated) {
			if e.Frame.ParentID == "" {
				t.nudge()
			}
		},
	)()
}

func (t *Tab) nudge() {
	select {
	case t.nudges <- struct{}{}:
	default:
	}
}

// Nudges implements dom.Nudger.
func (t *Tab) Nudges() <-chan struct{} { return t.nudges }

// Location implements dom.Host.
func (t *Tab) Location(ctx context.Context) (string, error) {
	info, err := t.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("browser: page info: %w", err)
	}
	return info.URL, nil
}

// Feed implements dom.Host.
func (t *Tab) Feed(ctx context.Context) (dom.Container, bool, error) {
	ok, el, err := t.page.Context(ctx).Has(dom.SelectorFeed)
	if err != nil || !ok {
		return nil, false, err
	}
	return &Element{el: el, tab: t}, true, nil
}

// HTML returns the serialised document.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	res, err := t.page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Close stops event routing and closes the page.
func (t *Tab) Close() error {
	t.cancel()
	t.subs.closeAll()
	if t.router != nil {
		t.router.Stop()
	}
	return t.page.Close()
}

// subscriptions maps observer tokens to change channels.
type subscriptions struct {
	next atomic.Uint64
	mu   sync.Mutex
	m    map[string]chan struct{}
}

func newSubscriptions() *subscriptions {
	return &subscriptions{m: make(map[string]chan struct{})}
}

func (s *subscriptions) add() (string, <-chan struct{}) {
	token := strconv.FormatUint(s.next.Add(1), 10)
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.m[token] = ch
	s.mu.Unlock()
	return token, ch
}

// dispatch signals the subscription for token without blocking; a signal
// already pending absorbs the new one.
func (s *subscriptions) dispatch(token string) bool {
	s.mu.Lock()
	ch, ok := s.m[token]
	s.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- struct{}{}:
	default:
	}
	return true
}

func (s *subscriptions) remove(token string) {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()
}

func (s *subscriptions) closeAll() {
	s.mu.Lock()
	s.m = make(map[string]chan struct{})
	s.mu.Unlock()
}
