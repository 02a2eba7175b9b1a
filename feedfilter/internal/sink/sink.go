// Package sink defines output backends for filter decisions and session
// lifecycle events. Sinks observe the pipeline; they never influence a
// decision.
package sink

import (
	"context"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Sink is the output interface. Implementations deliver decisions to
// different backends (stdout, webhook, in-process callback).
type Sink interface {
	Send(ctx context.Context, d verdict.Decision) error
	SendSession(ctx context.Context, e verdict.SessionEvent) error
	Close() error
}

// Discard drops everything.
type Discard struct{}

func (Discard) Send(context.Context, verdict.Decision) error            { return nil }
func (Discard) SendSession(context.Context, verdict.SessionEvent) error { return nil }
func (Discard) Close() error                                            { return nil }
