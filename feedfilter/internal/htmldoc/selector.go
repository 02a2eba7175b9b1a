package htmldoc

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Compiled selectors are reused across passes; the pipeline only ever
// emits a handful of distinct strings.
var selectors sync.Map // string -> cascadia.Selector

func compile(sel string) (cascadia.Selector, error) {
	if s, ok := selectors.Load(sel); ok {
		return s.(cascadia.Selector), nil
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: selector %q: %w", sel, err)
	}
	selectors.Store(sel, s)
	return s, nil
}

// all returns the descendants of root (root excluded) matching sel.
func all(root *html.Node, sel cascadia.Selector) []*html.Node {
	return cascadia.QueryAll(root, sel)
}

// first returns the first descendant of root matching sel, or nil.
func first(root *html.Node, sel cascadia.Selector) *html.Node {
	return cascadia.Query(root, sel)
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
