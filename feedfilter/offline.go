package feedfilter

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/digest"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/htmldoc"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/scan"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/sink"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/toggles"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Report is the outcome of an offline scan.
type Report struct {
	Toggles   verdict.Toggles    `json:"toggles"`
	Passes    int                `json:"passes"`
	Kept      int                `json:"kept"`
	Removed   int                `json:"removed"`
	Pending   int                `json:"pending"` // cells still rendering, left unprocessed
	Decisions []verdict.Decision `json:"decisions"`

	doc *htmldoc.Document
}

// ScanDocument filters a saved timeline page with the toggles currently
// in the store. A saved page never mutates again, so passes select only
// cells whose post has rendered and repeat until none is left; cells
// still showing a placeholder are counted as Pending.
func (f *Filter) ScanDocument(ctx context.Context, r io.Reader, pageURL string) (*Report, error) {
	doc, err := htmldoc.Parse(r, pageURL)
	if err != nil {
		return nil, err
	}
	container, ok, err := doc.Feed(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("feedfilter: no feed column in %s", pageURL)
	}

	t, err := toggles.Load(ctx, f.store)
	if err != nil {
		return nil, err
	}

	rep := &Report{Toggles: t, doc: doc}
	var mu sync.Mutex
	collect := sink.Funcs{Decision: func(_ context.Context, d verdict.Decision) error {
		mu.Lock()
		rep.Decisions = append(rep.Decisions, d)
		mu.Unlock()
		return nil
	}}

	pass := scan.New(scan.Config{
		Predicates:   f.preds,
		Sink:         sink.NewFanout(f.logger, collect, f.sinkR),
		BatchLimit:   f.cfg.Feed.BatchLimit,
		SessionID:    verdict.NewID(),
		PageURL:      pageURL,
		ItemSelector: dom.SelectorRenderedItem,
		Logger:       f.logger,
	})
	for {
		res, err := pass.Run(ctx, container, t)
		if err != nil {
			return nil, err
		}
		rep.Passes++
		rep.Kept += res.Kept
		rep.Removed += res.Removed
		if res.Handled() == 0 {
			break
		}
	}

	pending, err := container.QueryAll(ctx, dom.SelectorUnprocessedItem)
	if err != nil {
		return nil, err
	}
	rep.Pending = len(pending)
	return rep, nil
}

// WriteHTML writes the filtered document.
func (r *Report) WriteHTML(w io.Writer) error {
	return r.doc.Render(w)
}

// WriteDigest writes the kept posts as Markdown.
func (r *Report) WriteDigest(ctx context.Context, w io.Writer, title string) error {
	rd := digest.New()
	entries, err := rd.Entries(ctx, r.doc)
	if err != nil {
		return err
	}
	_, err = rd.Write(w, title, entries)
	return err
}
