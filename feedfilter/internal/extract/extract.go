// Package extract derives the facts predicates need from one feed item.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Facts reads text, media presence and publication time from item.
// It never modifies the item. A missing or malformed timestamp leaves
// PublishedAt zero; DOM errors are returned as-is so the caller can leave
// the item for the next pass.
func Facts(ctx context.Context, item dom.Node) (verdict.Facts, error) {
	var f verdict.Facts

	text, err := Text(ctx, item)
	if err != nil {
		return f, err
	}
	f.Text = text

	f.HasMedia, err = HasMedia(ctx, item)
	if err != nil {
		return f, err
	}

	f.PublishedAt, err = PublishedAt(ctx, item)
	if err != nil {
		return f, err
	}
	return f, nil
}

// Text returns the trimmed text of the item's primary text block, or ""
// when the item has none.
func Text(ctx context.Context, item dom.Node) (string, error) {
	block, ok, err := item.Has(ctx, dom.SelectorText)
	if err != nil {
		return "", fmt.Errorf("extract: text block: %w", err)
	}
	if !ok {
		return "", nil
	}
	text, err := block.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("extract: text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// mediaSelectors are independent; any one match means the item carries media.
var mediaSelectors = []string{
	dom.SelectorVideo,
	dom.SelectorPhoto,
	dom.SelectorPhotoLink,
}

// HasMedia reports whether the item holds a video, a photo attachment or
// a photo permalink.
func HasMedia(ctx context.Context, item dom.Node) (bool, error) {
	for _, sel := range mediaSelectors {
		_, ok, err := item.Has(ctx, sel)
		if err != nil {
			return false, fmt.Errorf("extract: media %s: %w", sel, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// PublishedAt parses the datetime attribute of the item's first <time>.
func PublishedAt(ctx context.Context, item dom.Node) (time.Time, error) {
	el, ok, err := item.Has(ctx, dom.SelectorTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("extract: time: %w", err)
	}
	if !ok {
		return time.Time{}, nil
	}
	raw, ok, err := el.Attr(ctx, "datetime")
	if err != nil {
		return time.Time{}, fmt.Errorf("extract: datetime: %w", err)
	}
	if !ok {
		return time.Time{}, nil
	}
	return ParseTimestamp(raw), nil
}

// timestampLayouts are tried in order. X emits RFC 3339 with milliseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp returns the zero time when raw matches no known layout.
// Layouts without a zone are read as UTC.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
