package sink

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Fanout delivers every event to each sink in turn. A failing sink is
// logged and skipped; the joined errors are returned once all sinks ran.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewFanout returns a Fanout over sinks.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{sinks: sinks, logger: logger}
}

func (f *Fanout) Send(ctx context.Context, d verdict.Decision) error {
	return f.each("decision", func(s Sink) error { return s.Send(ctx, d) })
}

func (f *Fanout) SendSession(ctx context.Context, e verdict.SessionEvent) error {
	return f.each(string(e.Type), func(s Sink) error { return s.SendSession(ctx, e) })
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

func (f *Fanout) each(kind string, deliver func(Sink) error) error {
	var errs []error
	for i, s := range f.sinks {
		if err := deliver(s); err != nil {
			f.logger.Warn("sink: delivery failed", "sink", i, "kind", kind, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
