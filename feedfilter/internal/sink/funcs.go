package sink

import (
	"context"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Funcs is an in-process sink. Nil fields drop the matching events.
type Funcs struct {
	Decision func(ctx context.Context, d verdict.Decision) error
	Session  func(ctx context.Context, e verdict.SessionEvent) error
}

func (f Funcs) Send(ctx context.Context, d verdict.Decision) error {
	if f.Decision == nil {
		return nil
	}
	return f.Decision(ctx, d)
}

func (f Funcs) SendSession(ctx context.Context, e verdict.SessionEvent) error {
	if f.Session == nil {
		return nil
	}
	return f.Session(ctx, e)
}

func (Funcs) Close() error { return nil }
