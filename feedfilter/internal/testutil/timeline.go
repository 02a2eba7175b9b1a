// Package testutil builds X timeline markup for pipeline tests.
package testutil

import (
	"html"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/htmldoc"
)

// HomeURL is a location recognised as the feed view.
const HomeURL = "https://x.com/home"

// Post describes one timeline cell.
type Post struct {
	Text      string
	Video     bool
	Photo     bool
	PhotoLink bool
	Published time.Time // zero = no <time> element
	Datetime  string    // raw datetime attribute, overrides Published
	NoArticle bool      // cell still rendering: no article yet
}

// PostHTML renders a cellInnerDiv for p.
func PostHTML(p Post) string {
	var b strings.Builder
	b.WriteString(`<div data-testid="cellInnerDiv">`)
	if p.NoArticle {
		b.WriteString(`<div class="placeholder"></div></div>`)
		return b.String()
	}
	b.WriteString(`<article data-testid="tweet">`)
	switch {
	case p.Datetime != "":
		b.WriteString(`<a href="/someone/status/1"><time datetime="` + html.EscapeString(p.Datetime) + `">1h</time></a>`)
	case !p.Published.IsZero():
		b.WriteString(`<a href="/someone/status/1"><time datetime="` + p.Published.UTC().Format(time.RFC3339Nano) + `">1h</time></a>`)
	}
	if p.Text != "" {
		lines := strings.Split(p.Text, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		b.WriteString(`<div data-testid="tweetText"><span>` + strings.Join(lines, "<br>") + `</span></div>`)
	}
	if p.Photo {
		b.WriteString(`<div data-testid="tweetPhoto"><img src="https://pbs.twimg.com/media/x.jpg"></div>`)
	}
	if p.PhotoLink {
		b.WriteString(`<a href="/someone/status/1/photo/1">pic</a>`)
	}
	if p.Video {
		b.WriteString(`<div data-testid="videoPlayer"><video src="blob:x"></video></div>`)
	}
	b.WriteString(`</article></div>`)
	return b.String()
}

// TimelineHTML renders a full page whose feed column holds posts.
func TimelineHTML(posts ...Post) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Home / X</title></head><body>`)
	b.WriteString(`<nav role="navigation"><a href="/home">Home</a></nav>`)
	b.WriteString(`<main><div data-testid="primaryColumn"><section><div aria-label="Timeline">`)
	for _, p := range posts {
		b.WriteString(PostHTML(p))
	}
	b.WriteString(`</div></section></div></main></body></html>`)
	return b.String()
}

// TimelineParent selects the element cells are appended to.
const TimelineParent = `div[aria-label="Timeline"]`

// Timeline parses a timeline page at location.
func Timeline(t testing.TB, location string, posts ...Post) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(TimelineHTML(posts...), location)
	if err != nil {
		t.Fatalf("testutil: parse timeline: %v", err)
	}
	return doc
}

// Blank parses a page with no feed column.
func Blank(t testing.TB, location string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(`<!DOCTYPE html><html><body><div id="react-root"></div></body></html>`, location)
	if err != nil {
		t.Fatalf("testutil: parse blank: %v", err)
	}
	return doc
}

// Eventually polls cond every 5ms until it holds or timeout elapses.
func Eventually(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}
