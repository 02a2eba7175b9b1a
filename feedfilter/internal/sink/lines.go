package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// Line is one JSON line: exactly one of the two fields is set.
type Line struct {
	Decision *verdict.Decision     `json:"decision,omitempty"`
	Session  *verdict.SessionEvent `json:"session,omitempty"`
}

// Lines writes one JSON object per event.
type Lines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewLines creates a Lines sink on w, os.Stdout when nil.
func NewLines(w io.Writer) *Lines {
	if w == nil {
		w = os.Stdout
	}
	return &Lines{enc: json.NewEncoder(w)}
}

func (l *Lines) Send(_ context.Context, d verdict.Decision) error {
	return l.write(Line{Decision: &d})
}

func (l *Lines) SendSession(_ context.Context, e verdict.SessionEvent) error {
	return l.write(Line{Session: &e})
}

func (l *Lines) Close() error { return nil }

func (l *Lines) write(v Line) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(v)
}
