package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Feed.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval: got %v, want 500ms", cfg.Feed.PollInterval)
	}
	if cfg.Feed.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce: got %v, want 250ms", cfg.Feed.Debounce)
	}
	if cfg.Feed.RetryInterval != time.Second {
		t.Errorf("RetryInterval: got %v, want 1s", cfg.Feed.RetryInterval)
	}
	if cfg.Feed.BatchLimit != 20 || cfg.Feed.MaxOneLiner != 70 || cfg.Feed.MaxAge != 24*time.Hour {
		t.Errorf("feed: %+v", cfg.Feed)
	}
	if len(cfg.Feed.URLs) != 2 {
		t.Errorf("URLs: got %v", cfg.Feed.URLs)
	}
	if cfg.Store.Path != "leanbrew.db" {
		t.Errorf("Store.Path: got %q", cfg.Store.Path)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "stdout" {
		t.Errorf("Sinks: got %+v", cfg.Sinks)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leanbrew.yaml")
	yml := `
browser:
  stealth: headful
  user_data_dir: /tmp/profile
  resource_blocking: [font, media]
feed:
  debounce: 100ms
  batch_limit: 5
  max_age: 48h
store:
  path: /var/lib/leanbrew/toggles.db
sinks:
  - type: webhook
    url: http://localhost:9000/hook
panel:
  addr: 127.0.0.1:8787
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Stealth != "headful" || cfg.Browser.UserDataDir != "/tmp/profile" {
		t.Errorf("browser: %+v", cfg.Browser)
	}
	if len(cfg.Browser.ResourceBlocking) != 2 {
		t.Errorf("ResourceBlocking: got %v", cfg.Browser.ResourceBlocking)
	}
	if cfg.Feed.Debounce != 100*time.Millisecond {
		t.Errorf("Debounce: got %v, want 100ms", cfg.Feed.Debounce)
	}
	if cfg.Feed.BatchLimit != 5 {
		t.Errorf("BatchLimit: got %d, want 5", cfg.Feed.BatchLimit)
	}
	if cfg.Feed.MaxAge != 48*time.Hour {
		t.Errorf("MaxAge: got %v, want 48h", cfg.Feed.MaxAge)
	}
	if cfg.Feed.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval default lost: %v", cfg.Feed.PollInterval)
	}
	if cfg.Sinks[0].Type != "webhook" || cfg.Panel.Addr != "127.0.0.1:8787" {
		t.Errorf("sinks/panel: %+v %+v", cfg.Sinks, cfg.Panel)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		"browser: {stealth: invisible}",
		"sinks: [{type: webhook}]",
		"sinks: [{type: nats}]",
		"feed: [",
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c)); err == nil {
			t.Errorf("Parse(%q): expected error", c)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
