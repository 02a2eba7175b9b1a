// Package scan implements one filtering pass over a feed container:
// select unprocessed items, classify them, then clear-and-mark or mark.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/extract"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/metrics"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/predicate"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/sink"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// DefaultBatchLimit caps the items handled by one pass.
const DefaultBatchLimit = 20

// Config for creating a Pass.
type Config struct {
	Predicates *predicate.Set
	Sink       sink.Sink
	BatchLimit int
	SessionID  string
	PageURL    string
	// ItemSelector picks the cells a pass considers.
	// Default: dom.SelectorUnprocessedItem.
	ItemSelector string
	Logger       *slog.Logger
}

func (c *Config) defaults() {
	if c.Predicates == nil {
		c.Predicates = predicate.NewSet(predicate.Options{})
	}
	if c.Sink == nil {
		c.Sink = sink.Discard{}
	}
	if c.BatchLimit <= 0 {
		c.BatchLimit = DefaultBatchLimit
	}
	if c.ItemSelector == "" {
		c.ItemSelector = dom.SelectorUnprocessedItem
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pass runs scan passes for one session. Passes are not safe to run
// concurrently on the same container; the scheduler serialises them.
type Pass struct {
	cfg Config
}

// New creates a Pass.
func New(cfg Config) *Pass {
	cfg.defaults()
	return &Pass{cfg: cfg}
}

// Result counts what one pass did.
type Result struct {
	Eligible int `json:"eligible"` // unprocessed items found, before the batch cap
	Kept     int `json:"kept"`
	Removed  int `json:"removed"`
	Skipped  int `json:"skipped"` // no article yet, or a DOM error: retried next pass
}

// Handled is the number of items that left Unprocessed during the pass.
func (r Result) Handled() int { return r.Kept + r.Removed }

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeKept
	outcomeRemoved
)

// Run classifies at most BatchLimit unprocessed items of container.
// Only a failure to enumerate items is returned; per-item failures leave
// the item Unprocessed for the next pass.
func (p *Pass) Run(ctx context.Context, container dom.Node, toggles verdict.Toggles) (Result, error) {
	var res Result
	start := time.Now()
	metrics.ScanPasses.Inc()
	defer func() { metrics.ScanDuration.Observe(time.Since(start).Seconds()) }()

	items, err := container.QueryAll(ctx, p.cfg.ItemSelector)
	if err != nil {
		return res, fmt.Errorf("scan: query items: %w", err)
	}
	res.Eligible = len(items)
	if len(items) == 0 {
		p.cfg.Logger.Debug("scan: no items to filter", "session", p.cfg.SessionID)
		return res, nil
	}
	if len(items) > p.cfg.BatchLimit {
		items = items[:p.cfg.BatchLimit]
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := p.decide(ctx, item, toggles)
		if err != nil {
			p.cfg.Logger.Debug("scan: item left for next pass", "session", p.cfg.SessionID, "error", err)
		}
		switch out {
		case outcomeKept:
			res.Kept++
			metrics.Items.WithLabelValues("kept").Inc()
		case outcomeRemoved:
			res.Removed++
			metrics.Items.WithLabelValues("removed").Inc()
		default:
			res.Skipped++
			metrics.Items.WithLabelValues("skipped").Inc()
		}
	}

	p.cfg.Logger.Debug("scan: pass done", "session", p.cfg.SessionID,
		"eligible", res.Eligible, "kept", res.Kept, "removed", res.Removed, "skipped", res.Skipped)
	return res, nil
}

func (p *Pass) decide(ctx context.Context, item dom.Node, toggles verdict.Toggles) (outcome, error) {
	raw, present, err := item.Attr(ctx, verdict.Attribute)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("read state: %w", err)
	}
	if verdict.ParseState(raw, present) == verdict.StateRemoved {
		return outcomeSkipped, nil
	}

	if _, ok, err := item.Has(ctx, dom.SelectorArticle); err != nil || !ok {
		return outcomeSkipped, err
	}

	facts, err := extract.Facts(ctx, item)
	if err != nil {
		return outcomeSkipped, err
	}

	reasons := p.cfg.Predicates.Evaluate(facts, toggles)
	state := verdict.StateKept
	if len(reasons) > 0 {
		p.cfg.Logger.Info("scan: removing post", "session", p.cfg.SessionID,
			"reasons", reasons, "text", verdict.TruncateText(facts.Text))
		if err := item.Clear(ctx); err != nil {
			return outcomeSkipped, fmt.Errorf("clear: %w", err)
		}
		state = verdict.StateRemoved
	}
	if err := item.SetAttr(ctx, verdict.Attribute, string(state)); err != nil {
		return outcomeSkipped, fmt.Errorf("mark %s: %w", state, err)
	}

	for _, c := range reasons {
		metrics.Removals.WithLabelValues(string(c)).Inc()
	}
	p.emit(ctx, state, reasons, facts)

	if state == verdict.StateRemoved {
		return outcomeRemoved, nil
	}
	return outcomeKept, nil
}

func (p *Pass) emit(ctx context.Context, state verdict.State, reasons []verdict.Category, f verdict.Facts) {
	d := verdict.Decision{
		ID:        verdict.NewID(),
		SessionID: p.cfg.SessionID,
		PageURL:   p.cfg.PageURL,
		State:     state,
		Reasons:   reasons,
		Text:      verdict.TruncateText(f.Text),
		HasMedia:  f.HasMedia,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := p.cfg.Sink.Send(ctx, d); err != nil {
		p.cfg.Logger.Warn("scan: send decision failed", "error", err)
	}
}
