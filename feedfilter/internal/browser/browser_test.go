package browser

import (
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"": ModeHeadless, "headless": ModeHeadless, "headful": ModeHeadful}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q): got %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("invisible"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.Mode != ModeHeadless || m.cfg.XvfbDisplay != ":99" || m.cfg.Logger == nil {
		t.Errorf("defaults: %+v", m.cfg)
	}
	if m.Browser() != nil {
		t.Error("browser before Start")
	}
}

func TestBlockSet(t *testing.T) {
	set := blockSet([]string{"Images", " fonts ", "media", "stylesheets", ""})
	for _, typ := range []string{"image", "font", "media", "stylesheet"} {
		if !set[typ] {
			t.Errorf("%s not blocked", typ)
		}
	}
	if set["document"] || set["script"] || set[""] {
		t.Errorf("unexpected entries: %v", set)
	}
}

func TestSubscriptions_Dispatch(t *testing.T) {
	s := newSubscriptions()
	a, chA := s.add()
	b, chB := s.add()
	if a == b {
		t.Fatalf("tokens not unique: %q", a)
	}

	// Two signals before a read collapse into one.
	s.dispatch(a)
	s.dispatch(a)
	if got := len(chA); got != 1 {
		t.Errorf("pending on A: got %d, want 1", got)
	}
	if len(chB) != 0 {
		t.Error("B signalled by A's token")
	}

	s.remove(b)
	if s.dispatch(b) {
		t.Error("dispatch to removed token reported delivery")
	}
	if s.dispatch("unknown") {
		t.Error("dispatch to unknown token reported delivery")
	}
}

func TestManager_StartAfterClose(t *testing.T) {
	m := NewManager(Config{})
	m.Close()
	if _, err := m.Start(t.Context()); err == nil {
		t.Error("expected error starting a closed manager")
	}
}
