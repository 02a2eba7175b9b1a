// Package htmldoc is an in-memory dom.Host built on golang.org/x/net/html,
// with selectors evaluated by cascadia.
// It backs the offline scanner and every pipeline test: the tree can be
// mutated from outside (AppendHTML, Remove, SetLocation) and subscribed
// observers are notified of child-list changes the way a MutationObserver
// would be.
package htmldoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
)

// Document is a mutable HTML tree safe for concurrent use.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	location  string
	observers []*observer
	nudges    chan struct{}
}

type observer struct {
	root *html.Node
	ch   chan struct{}
}

// Parse reads a full HTML document. location is the URL reported by Location.
func Parse(r io.Reader, location string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return &Document{root: root, location: location, nudges: make(chan struct{}, 1)}, nil
}

// ParseString is Parse over a string.
func ParseString(s, location string) (*Document, error) {
	return Parse(strings.NewReader(s), location)
}

// Location implements dom.Host.
func (d *Document) Location(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location, nil
}

// SetLocation simulates an in-page navigation and nudges the monitor.
func (d *Document) SetLocation(u string) {
	d.mu.Lock()
	d.location = u
	d.mu.Unlock()
	select {
	case d.nudges <- struct{}{}:
	default:
	}
}

// Nudges implements dom.Nudger.
func (d *Document) Nudges() <-chan struct{} { return d.nudges }

// Feed implements dom.Host.
func (d *Document) Feed(ctx context.Context) (dom.Container, bool, error) {
	n, ok, err := d.Root().Has(ctx, dom.SelectorFeed)
	if err != nil || !ok {
		return nil, false, err
	}
	return n.(*Node), true, nil
}

// Root returns the document node.
func (d *Document) Root() *Node { return &Node{doc: d, n: d.root} }

// QueryAll runs a selector against the whole document.
func (d *Document) QueryAll(ctx context.Context, sel string) ([]*Node, error) {
	nodes, err := d.Root().QueryAll(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.(*Node)
	}
	return out, nil
}

// AppendHTML parses fragment in the context of the first element matching
// parentSel, appends the result as its last children and notifies observers.
func (d *Document) AppendHTML(parentSel, fragment string) error {
	sel, err := compile(parentSel)
	if err != nil {
		return err
	}

	d.mu.Lock()
	parent := first(d.root, sel)
	if parent == nil {
		d.mu.Unlock()
		return fmt.Errorf("htmldoc: no element matches %q", parentSel)
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("htmldoc: parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	targets := d.observersOf(parent)
	d.mu.Unlock()

	notify(targets)
	return nil
}

// Remove detaches every element matching sel and notifies observers.
func (d *Document) Remove(sel string) (int, error) {
	s, err := compile(sel)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	matched := all(d.root, s)
	var targets []*observer
	for _, n := range matched {
		if n.Parent == nil {
			continue
		}
		targets = append(targets, d.observersOf(n.Parent)...)
		n.Parent.RemoveChild(n)
	}
	d.mu.Unlock()

	notify(targets)
	return len(matched), nil
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// observersOf returns the observers whose root is n or an ancestor of n.
// Caller holds d.mu.
func (d *Document) observersOf(n *html.Node) []*observer {
	var out []*observer
	for _, o := range d.observers {
		for p := n; p != nil; p = p.Parent {
			if p == o.root {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

func (d *Document) detach(o *observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, cur := range d.observers {
		if cur == o {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			return
		}
	}
}

func notify(targets []*observer) {
	for _, o := range targets {
		select {
		case o.ch <- struct{}{}:
		default:
		}
	}
}

// Node is a handle to one element of a Document. It implements dom.Node
// and dom.Container.
type Node struct {
	doc *Document
	n   *html.Node
}

// QueryAll implements dom.Node.
func (nd *Node) QueryAll(_ context.Context, sel string) ([]dom.Node, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()

	matched := all(nd.n, s)
	out := make([]dom.Node, len(matched))
	for i, m := range matched {
		out[i] = &Node{doc: nd.doc, n: m}
	}
	return out, nil
}

// Has implements dom.Node.
func (nd *Node) Has(_ context.Context, sel string) (dom.Node, bool, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, false, err
	}
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()

	m := first(nd.n, s)
	if m == nil {
		return nil, false, nil
	}
	return &Node{doc: nd.doc, n: m}, true, nil
}

// Text implements dom.Node. <br> renders as a newline; script and style
// content is skipped.
func (nd *Node) Text(_ context.Context) (string, error) {
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()
	return innerText(nd.n), nil
}

// Attr implements dom.Node.
func (nd *Node) Attr(_ context.Context, name string) (string, bool, error) {
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()
	v, ok := lookupAttr(nd.n, name)
	return v, ok, nil
}

// SetAttr implements dom.Node. Attribute changes are not child-list
// mutations and do not notify observers.
func (nd *Node) SetAttr(_ context.Context, name, value string) error {
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()
	for i := range nd.n.Attr {
		if nd.n.Attr[i].Key == name {
			nd.n.Attr[i].Val = value
			return nil
		}
	}
	nd.n.Attr = append(nd.n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

// Clear implements dom.Node.
func (nd *Node) Clear(_ context.Context) error {
	nd.doc.mu.Lock()
	changed := nd.n.FirstChild != nil
	for c := nd.n.FirstChild; c != nil; c = nd.n.FirstChild {
		nd.n.RemoveChild(c)
	}
	var targets []*observer
	if changed {
		targets = nd.doc.observersOf(nd.n)
	}
	nd.doc.mu.Unlock()

	notify(targets)
	return nil
}

// Observe implements dom.Container.
func (nd *Node) Observe(_ context.Context) (<-chan struct{}, func(), error) {
	o := &observer{root: nd.n, ch: make(chan struct{}, 1)}
	nd.doc.mu.Lock()
	nd.doc.observers = append(nd.doc.observers, o)
	nd.doc.mu.Unlock()

	var once sync.Once
	return o.ch, func() { once.Do(func() { nd.doc.detach(o) }) }, nil
}

// HTML renders the node and its subtree.
func (nd *Node) HTML() string {
	nd.doc.mu.Lock()
	defer nd.doc.mu.Unlock()
	var buf bytes.Buffer
	html.Render(&buf, nd.n)
	return buf.String()
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Br:
				sb.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}
