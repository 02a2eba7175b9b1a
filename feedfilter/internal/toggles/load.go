package toggles

import (
	"context"
	"errors"
	"fmt"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// ErrStoreRead wraps every failure to read a toggle.
var ErrStoreRead = errors.New("toggles: store read failed")

// ErrUnknownKey is returned by SetToggle for keys outside the five toggles.
var ErrUnknownKey = errors.New("toggles: unknown key")

// Load reads the five toggles. A missing or non-boolean value is false;
// a failed read aborts the whole load and nothing is defaulted.
func Load(ctx context.Context, store Store) (verdict.Toggles, error) {
	var t verdict.Toggles
	for _, spec := range verdict.ToggleSpecs {
		v, err := store.Get(ctx, spec.Key)
		if err != nil {
			return verdict.Toggles{}, fmt.Errorf("%w: %s: %w", ErrStoreRead, spec.Key, err)
		}
		on, _ := v.(bool)
		t.Set(spec.Category, on)
	}
	return t, nil
}

// SetToggle writes one toggle by store key.
func SetToggle(ctx context.Context, store Store, key string, on bool) error {
	if _, ok := verdict.LookupToggle(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return store.Set(ctx, key, on)
}

// View is one toggle as listed by the panel, the CLI and MCP tools.
type View struct {
	verdict.ToggleSpec
	Enabled bool `json:"enabled"`
}

// Views reads every toggle, in panel order.
func Views(ctx context.Context, store Store) ([]View, error) {
	t, err := Load(ctx, store)
	if err != nil {
		return nil, err
	}
	out := make([]View, len(verdict.ToggleSpecs))
	for i, spec := range verdict.ToggleSpecs {
		out[i] = View{ToggleSpec: spec, Enabled: t.Enabled(spec.Category)}
	}
	return out, nil
}
