package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// WebhookConfig for creating a Webhook sink.
type WebhookConfig struct {
	URL string
	// Retries after the first attempt. Default: 3; negative disables retry.
	Retries int
	// FirstDelay before the first retry; later delays grow exponentially.
	// Default: 1s.
	FirstDelay time.Duration
	// Timeout per request. Default: 10s.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Webhook POSTs each event as a JSON Line. 5xx, 429 and transport errors
// are retried; other 4xx responses are final.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
}

// NewWebhook creates a Webhook sink.
func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	} else if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.FirstDelay <= 0 {
		cfg.FirstDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Webhook{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (w *Webhook) Send(ctx context.Context, d verdict.Decision) error {
	return w.post(ctx, Line{Decision: &d})
}

func (w *Webhook) SendSession(ctx context.Context, e verdict.SessionEvent) error {
	return w.post(ctx, Line{Session: &e})
}

func (w *Webhook) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func (w *Webhook) post(ctx context.Context, line Line) error {
	body, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	attempts := 0
	op := func() error {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			return fmt.Errorf("status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = w.cfg.FirstDelay
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(w.cfg.Retries)), ctx)

	err = backoff.RetryNotify(op, policy, func(err error, next time.Duration) {
		w.cfg.Logger.Warn("webhook: retrying", "url", w.cfg.URL, "attempt", attempts, "next", next, "error", err)
	})
	if err != nil {
		return fmt.Errorf("webhook: gave up after %d attempts: %w", attempts, err)
	}
	return nil
}
