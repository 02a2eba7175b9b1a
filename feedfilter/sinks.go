package feedfilter

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/sink"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Sink is the output interface for decisions and session events.
type Sink = sink.Sink

// NewStdoutSink creates a JSON-lines sink. A nil writer means os.Stdout.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewLines(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(sink.WebhookConfig{URL: url, Logger: logger})
}

// NewCallbackSink creates an in-process sink. Either function may be nil.
func NewCallbackSink(
	onDecision func(ctx context.Context, d verdict.Decision) error,
	onSession func(ctx context.Context, e verdict.SessionEvent) error,
) Sink {
	return sink.Funcs{Decision: onDecision, Session: onSession}
}

// SinksFromConfig builds the sinks listed in cfg.
func SinksFromConfig(cfg []SinkConfig, logger *slog.Logger) ([]Sink, error) {
	out := make([]Sink, 0, len(cfg))
	for i, s := range cfg {
		switch s.Type {
		case "stdout":
			out = append(out, NewStdoutSink(nil))
		case "webhook":
			out = append(out, NewWebhookSink(s.URL, logger))
		default:
			return nil, fmt.Errorf("feedfilter: sinks[%d]: unknown type %q", i, s.Type)
		}
	}
	return out, nil
}
