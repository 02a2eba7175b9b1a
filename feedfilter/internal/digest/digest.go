// Package digest renders the posts a scan kept as a Markdown reading list.
package digest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/extract"
	"github.com/hazyhaar/leanbrew/feedfilter/internal/htmldoc"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// selectorKept matches cells a pass marked Kept.
const selectorKept = dom.SelectorItem + `[` + verdict.Attribute + `="` + string(verdict.StateKept) + `"]`

// Entry is one kept post.
type Entry struct {
	Markdown    string
	HasMedia    bool
	PublishedAt time.Time
}

// Renderer sanitises post markup and converts it to Markdown.
type Renderer struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

// New creates a Renderer. Post HTML comes from a third-party page, so it
// is reduced to user-generated-content tags before conversion.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowRelativeURLs(true) // timeline links are site-relative
	return &Renderer{
		policy: policy,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Markdown converts one fragment of post HTML.
func (r *Renderer) Markdown(fragment string) (string, error) {
	clean := r.policy.Sanitize(fragment)
	md, err := r.conv.ConvertString(clean, converter.WithDomain("https://x.com"))
	if err != nil {
		return "", fmt.Errorf("digest: convert: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Entries collects the kept posts of doc in document order.
func (r *Renderer) Entries(ctx context.Context, doc *htmldoc.Document) ([]Entry, error) {
	cells, err := doc.QueryAll(ctx, selectorKept)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, cell := range cells {
		facts, err := extract.Facts(ctx, cell)
		if err != nil {
			return nil, err
		}
		e := Entry{HasMedia: facts.HasMedia, PublishedAt: facts.PublishedAt}

		textNode, ok, err := cell.Has(ctx, dom.SelectorText)
		if err != nil {
			return nil, err
		}
		if ok {
			e.Markdown, err = r.Markdown(textNode.(*htmldoc.Node).HTML())
			if err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// Write renders entries under a title and returns how many were written.
func (r *Renderer) Write(w io.Writer, title string, entries []Entry) (int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(entries) == 0 {
		b.WriteString("_No posts kept._\n")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "## %d", i+1)
		if !e.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " · %s", e.PublishedAt.UTC().Format("2006-01-02 15:04 UTC"))
		}
		b.WriteString("\n\n")
		if e.Markdown != "" {
			b.WriteString(e.Markdown)
			b.WriteString("\n\n")
		}
		if e.HasMedia {
			b.WriteString("_media attached_\n\n")
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("digest: write: %w", err)
	}
	return len(entries), nil
}
