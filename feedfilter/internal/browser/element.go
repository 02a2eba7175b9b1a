package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/leanbrew/feedfilter/internal/dom"
)

// Element is a live DOM element. Every method is one DevTools round trip.
type Element struct {
	el  *rod.Element
	tab *Tab
}

func (e *Element) wrap(el *rod.Element) *Element { return &Element{el: el, tab: e.tab} }

// QueryAll implements dom.Node.
func (e *Element) QueryAll(ctx context.Context, sel string) ([]dom.Node, error) {
	els, err := e.el.Context(ctx).Elements(sel)
	if err != nil {
		return nil, fmt.Errorf("browser: query %s: %w", sel, err)
	}
	out := make([]dom.Node, len(els))
	for i, el := range els {
		out[i] = e.wrap(el)
	}
	return out, nil
}

// Has implements dom.Node.
func (e *Element) Has(ctx context.Context, sel string) (dom.Node, bool, error) {
	ok, el, err := e.el.Context(ctx).Has(sel)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.wrap(el), true, nil
}

// Text implements dom.Node.
func (e *Element) Text(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(`function () { return this.innerText }`)
	if err != nil {
		return "", fmt.Errorf("browser: innerText: %w", err)
	}
	return res.Value.Str(), nil
}

// Attr implements dom.Node.
func (e *Element) Attr(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// SetAttr implements dom.Node.
func (e *Element) SetAttr(ctx context.Context, name, value string) error {
	_, err := e.el.Context(ctx).Eval(`function (name, value) { this.setAttribute(name, value) }`, name, value)
	return err
}

// Clear implements dom.Node.
func (e *Element) Clear(ctx context.Context) error {
	_, err := e.el.Context(ctx).Eval(`function () { this.replaceChildren() }`)
	return err
}

// Observe implements dom.Container with a MutationObserver that reports
// through the page binding.
func (e *Element) Observe(ctx context.Context) (<-chan struct{}, func(), error) {
	token, ch := e.tab.subs.add()
	if _, err := e.el.Context(ctx).Eval(observeJS, token); err != nil {
		e.tab.subs.remove(token)
		return nil, nil, fmt.Errorf("browser: install observer: %w", err)
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.tab.subs.remove(token)
			// The page may be gone already; the binding stays harmless.
			if _, err := e.tab.page.Eval(unobserveJS, token); err != nil {
				e.tab.logger.Debug("browser: disconnect observer", "error", err)
			}
		})
	}
	return ch, cancel, nil
}
