package feedfilter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/testutil"
	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

func TestScanDocument_DrainsBatches(t *testing.T) {
	var posts []testutil.Post
	for i := 0; i < 30; i++ {
		posts = append(posts, testutil.Post{Text: "ratio"})
	}
	for i := 0; i < 15; i++ {
		posts = append(posts, testutil.Post{Text: strings.Repeat("worth reading ", 10), Published: time.Now()})
	}
	posts = append(posts, testutil.Post{NoArticle: true})

	f := New(DefaultConfig(), NewMemoryStore(map[string]any{verdict.KeyOneLiner: true}), nil)
	rep, err := f.ScanDocument(context.Background(), strings.NewReader(testutil.TimelineHTML(posts...)), testutil.HomeURL)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Removed != 30 || rep.Kept != 15 || rep.Pending != 1 {
		t.Errorf("report: removed=%d kept=%d pending=%d", rep.Removed, rep.Kept, rep.Pending)
	}
	if rep.Passes != 4 {
		t.Errorf("passes: got %d, want 4 (20+20+5 then an empty one)", rep.Passes)
	}
	if len(rep.Decisions) != 45 {
		t.Errorf("decisions: got %d, want 45", len(rep.Decisions))
	}

	var html strings.Builder
	if err := rep.WriteHTML(&html); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html.String(), "ratio") {
		t.Error("removed text still in filtered HTML")
	}
	if got := strings.Count(html.String(), `data-filtered="removed"`); got != 30 {
		t.Errorf("removed markers: got %d, want 30", got)
	}

	var md strings.Builder
	if err := rep.WriteDigest(context.Background(), &md, "Home"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(md.String(), "\n## "); got != 15 {
		t.Errorf("digest posts: got %d, want 15", got)
	}
}

func TestScanDocument_PlaceholdersDoNotHidePosts(t *testing.T) {
	var posts []testutil.Post
	for i := 0; i < 20; i++ {
		posts = append(posts, testutil.Post{NoArticle: true})
	}
	for i := 0; i < 5; i++ {
		posts = append(posts, testutil.Post{Text: "gm"})
	}

	f := New(DefaultConfig(), NewMemoryStore(map[string]any{verdict.KeyOneLiner: true}), nil)
	rep, err := f.ScanDocument(context.Background(), strings.NewReader(testutil.TimelineHTML(posts...)), testutil.HomeURL)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Removed != 5 || rep.Kept != 0 || rep.Pending != 20 {
		t.Errorf("report: removed=%d kept=%d pending=%d", rep.Removed, rep.Kept, rep.Pending)
	}
	if len(rep.Decisions) != 5 {
		t.Errorf("decisions: got %d, want 5", len(rep.Decisions))
	}
}

func TestScanDocument_NoFeed(t *testing.T) {
	f := New(DefaultConfig(), NewMemoryStore(nil), nil)
	_, err := f.ScanDocument(context.Background(), strings.NewReader(`<html><body><p>login</p></body></html>`), testutil.HomeURL)
	if err == nil {
		t.Error("expected error for a page without a feed column")
	}
}
