// Package dom defines the document-tree contract the filter pipeline runs
// against. Two hosts implement it: a live Chrome tab driven over CDP
// (internal/browser) and an in-memory HTML tree (internal/htmldoc).
//
// Every call takes a context because the live host turns each one into a
// DevTools round trip.
package dom

import "context"

// Selectors for the X/Twitter timeline markup. Hosts must understand
// tag, [attr], [attr="v"], [attr*="v"], :not(...), :has(...) and the
// descendant combinator.
const (
	SelectorFeed      = `div[data-testid="primaryColumn"]`
	SelectorItem      = `div[data-testid="cellInnerDiv"]`
	SelectorArticle   = `article[data-testid="tweet"]`
	SelectorText      = `div[data-testid="tweetText"]`
	SelectorVideo     = `video`
	SelectorPhoto     = `div[data-testid="tweetPhoto"] img`
	SelectorPhotoLink = `a[href*="/photo/"]`
	SelectorTime      = `time`

	// SelectorUnprocessedItem selects items that carry no decision yet.
	SelectorUnprocessedItem = SelectorItem + `:not([data-filtered])`

	// SelectorRenderedItem narrows SelectorUnprocessedItem to cells whose
	// post has rendered.
	SelectorRenderedItem = SelectorUnprocessedItem + `:has(` + SelectorArticle + `)`
)

// Node is a handle to one element.
type Node interface {
	// QueryAll returns every descendant matching sel, in document order.
	QueryAll(ctx context.Context, sel string) ([]Node, error)
	// Has returns the first descendant matching sel without waiting for
	// one to appear.
	Has(ctx context.Context, sel string) (Node, bool, error)
	// Text returns the rendered text (innerText), untrimmed.
	Text(ctx context.Context) (string, error)
	Attr(ctx context.Context, name string) (string, bool, error)
	SetAttr(ctx context.Context, name, value string) error
	// Clear drops every child of the node.
	Clear(ctx context.Context) error
}

// Container is the feed root observed by a session.
type Container interface {
	Node
	// Observe subscribes to child-list mutations anywhere in the subtree.
	// The channel receives at least one value after every mutation batch;
	// bursts may be coalesced. cancel detaches the subscription and is
	// safe to call more than once.
	Observe(ctx context.Context) (changes <-chan struct{}, cancel func(), err error)
}

// Host is the page the navigation monitor watches.
type Host interface {
	// Location returns the current URL.
	Location(ctx context.Context) (string, error)
	// Feed returns the feed container, or false when it is not rendered yet.
	Feed(ctx context.Context) (Container, bool, error)
}

// Nudger is implemented by hosts that can signal in-page navigation as it
// happens. The monitor polls right away on every nudge.
type Nudger interface {
	Nudges() <-chan struct{}
}
