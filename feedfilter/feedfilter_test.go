package feedfilter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/navigation"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/testutil"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

func fastConfig() *Config {
	cfg := DefaultConfig()
	cfg.Feed.PollInterval = 10 * time.Millisecond
	cfg.Feed.RetryInterval = 10 * time.Millisecond
	cfg.Feed.Debounce = 20 * time.Millisecond
	return cfg
}

type collector struct {
	mu        sync.Mutex
	decisions []verdict.Decision
	sessions  []verdict.SessionEvent
}

func (c *collector) sink() Sink {
	return NewCallbackSink(
		func(_ context.Context, d verdict.Decision) error {
			c.mu.Lock()
			c.decisions = append(c.decisions, d)
			c.mu.Unlock()
			return nil
		},
		func(_ context.Context, e verdict.SessionEvent) error {
			c.mu.Lock()
			c.sessions = append(c.sessions, e)
			c.mu.Unlock()
			return nil
		},
	)
}

func (c *collector) removed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.decisions {
		if d.State == verdict.StateRemoved {
			n++
		}
	}
	return n
}

func TestWatch_FiltersLiveTimeline(t *testing.T) {
	store := NewMemoryStore(map[string]any{
		verdict.KeyOneLiner: true,
		verdict.KeyOldPost:  true,
	})
	col := &collector{}
	f := New(fastConfig(), store, nil, col.sink())
	defer f.Close()

	doc := testutil.Timeline(t, testutil.HomeURL,
		testutil.Post{Text: "gm"},
		testutil.Post{Text: strings.Repeat("long read ", 20), Published: time.Now().Add(-48 * time.Hour)},
		testutil.Post{Text: strings.Repeat("fresh take ", 20), Published: time.Now().Add(-time.Hour)},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, doc) }()

	testutil.Eventually(t, 2*time.Second, func() bool { return col.removed() == 2 }, "two removals")

	st := f.Status()
	if st.State != navigation.StateOnFeed || st.Session == nil {
		t.Errorf("status: %+v", st)
	}
	if err := f.Watch(ctx, doc); err == nil {
		t.Error("second concurrent Watch should fail")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}
	if st := f.Status(); st.State != navigation.StateOffFeed || st.Session != nil {
		t.Errorf("status after Watch: %+v", st)
	}

	cells, _ := doc.QueryAll(context.Background(), dom.SelectorItem)
	raw, _, _ := cells[2].Attr(context.Background(), verdict.Attribute)
	if verdict.State(raw) != verdict.StateKept {
		t.Errorf("fresh post: got %q, want kept", raw)
	}
}

func TestWatch_FailingWebhookDoesNotStallNavigation(t *testing.T) {
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer hook.Close()

	store := NewMemoryStore(map[string]any{verdict.KeyOneLiner: true})
	col := &collector{}
	// Not closed: the webhook queue would spend its drain window retrying.
	f := New(fastConfig(), store, nil, NewWebhookSink(hook.URL, nil), col.sink())

	doc := testutil.Timeline(t, testutil.HomeURL,
		testutil.Post{Text: "gm"},
		testutil.Post{Text: "ratio"},
		testutil.Post{Text: "first"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, doc) }()
	defer func() {
		cancel()
		<-done
	}()

	start := time.Now()
	testutil.Eventually(t, time.Second, func() bool { return col.removed() == 3 }, "three removals")

	testutil.Eventually(t, time.Second, func() bool { return f.Status().Session != nil }, "first session")
	first := f.Status().Session.ID

	doc.SetLocation("https://x.com/explore")
	testutil.Eventually(t, time.Second, func() bool { return f.Status().State == navigation.StateOffFeed }, "leave")
	doc.SetLocation(testutil.HomeURL)
	testutil.Eventually(t, time.Second, func() bool {
		s := f.Status().Session
		return s != nil && s.ID != first && s.Phase == navigation.PhaseActive
	}, "re-enter")

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("leave and re-enter took %s with a failing webhook", elapsed)
	}
}

func TestHandler_TogglePanel(t *testing.T) {
	store := NewMemoryStore(nil)
	f := New(fastConfig(), store, nil)
	srv := httptest.NewServer(f.Handler())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/toggles/"+verdict.KeyAd, strings.NewReader(`{"enabled":true}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT: got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.State != navigation.StateOffFeed {
		t.Errorf("status: %+v", st)
	}
}

func TestSinksFromConfig(t *testing.T) {
	sinks, err := SinksFromConfig([]SinkConfig{{Type: "stdout"}, {Type: "webhook", URL: "http://127.0.0.1:1/hook"}}, nil)
	if err != nil || len(sinks) != 2 {
		t.Fatalf("sinks=%d err=%v", len(sinks), err)
	}
	if _, err := SinksFromConfig([]SinkConfig{{Type: "kafka"}}, nil); err == nil {
		t.Error("expected error for unknown sink type")
	}
}
