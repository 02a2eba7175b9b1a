package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (any, error) { return nil, errors.New("disk gone") }
func (brokenStore) Set(context.Context, string, any) error   { return errors.New("disk gone") }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListToggles(t *testing.T) {
	store := toggles.NewMemoryStore(map[string]any{verdict.KeyOldPost: true})
	h := New(Config{Store: store})

	rec := do(t, h, http.MethodGet, "/api/toggles", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var views []toggles.View
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 5 {
		t.Fatalf("toggles: got %d, want 5", len(views))
	}
	for _, v := range views {
		if want := v.Key == verdict.KeyOldPost; v.Enabled != want {
			t.Errorf("%s: got %v, want %v", v.Key, v.Enabled, want)
		}
		if v.Label == "" {
			t.Errorf("%s: empty label", v.Key)
		}
	}
}

func TestSetToggle(t *testing.T) {
	store := toggles.NewMemoryStore(nil)
	h := New(Config{Store: store})

	rec := do(t, h, http.MethodPut, "/api/toggles/"+verdict.KeyOneLiner, `{"enabled": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	got, _ := toggles.Load(context.Background(), store)
	if !got.OneLiner {
		t.Error("toggle not persisted")
	}
}

func TestSetToggle_Errors(t *testing.T) {
	h := New(Config{Store: toggles.NewMemoryStore(nil)})

	cases := []struct {
		path, body string
		code       int
	}{
		{"/api/toggles/darkMode", `{"enabled": true}`, http.StatusNotFound},
		{"/api/toggles/" + verdict.KeyAd, `{}`, http.StatusBadRequest},
		{"/api/toggles/" + verdict.KeyAd, `{"enabled": "yes"}`, http.StatusBadRequest},
		{"/api/toggles/" + verdict.KeyAd, `not json`, http.StatusBadRequest},
	}
	for _, c := range cases {
		if rec := do(t, h, http.MethodPut, c.path, c.body); rec.Code != c.code {
			t.Errorf("PUT %s %s: got %d, want %d", c.path, c.body, rec.Code, c.code)
		}
	}
}

func TestStoreFailureIsReported(t *testing.T) {
	h := New(Config{Store: brokenStore{}})
	if rec := do(t, h, http.MethodGet, "/api/toggles", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("list: got %d, want 500", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/toggles/"+verdict.KeyAd, `{"enabled": false}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("set: got %d, want 500", rec.Code)
	}
}

func TestStatusHealthMetrics(t *testing.T) {
	h := New(Config{
		Store:  toggles.NewMemoryStore(nil),
		Status: func() any { return map[string]string{"state": "on_feed"} },
	})

	rec := do(t, h, http.MethodGet, "/api/status", "")
	if !strings.Contains(rec.Body.String(), "on_feed") {
		t.Errorf("status body: %s", rec.Body)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz: got %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics: got %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/", "")
	if !strings.Contains(rec.Body.String(), "/api/toggles") {
		t.Error("index page does not reference the toggle API")
	}
}

func TestGuard(t *testing.T) {
	h := New(Config{Store: toggles.NewMemoryStore(nil)})

	rec := do(t, h, http.MethodGet, "/", "")
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options: got %q", got)
	}
	if got := rec.Header().Get("Content-Security-Policy"); !strings.Contains(got, "frame-ancestors 'none'") {
		t.Errorf("CSP: got %q", got)
	}

	big := `{"enabled": true, "pad": "` + strings.Repeat("x", 2*maxToggleBody) + `"}`
	rec = do(t, h, http.MethodPut, "/api/toggles/"+verdict.KeyOneLiner, big)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized body: got %d, want 400", rec.Code)
	}
}
