// Package verdict defines the structured types produced by leanbrew.
// Consumers of the decision stream (webhooks, callbacks, the offline
// scanner) import this package to read per-item decisions and session
// lifecycle events.
package verdict

import (
	"time"

	"github.com/google/uuid"
)

// Attribute is the node attribute that carries an item's State.
const Attribute = "data-filtered"

// State is the per-item decision, stored on the item's node.
type State string

const (
	StateUnprocessed State = ""        // attribute absent
	StateKept        State = "true"    // evaluated, no predicate fired
	StateRemoved     State = "removed" // content cleared, never evaluated again
)

// ParseState maps a raw attribute value to a State. Unknown values are
// treated as Kept: something marked the node, so it is not eligible.
func ParseState(raw string, present bool) State {
	if !present {
		return StateUnprocessed
	}
	switch State(raw) {
	case StateRemoved:
		return StateRemoved
	default:
		return StateKept
	}
}

// Category names one filter predicate.
type Category string

const (
	CategoryOneLiner Category = "one_liner"
	CategoryAd       Category = "ad"
	CategoryAIReply  Category = "ai_reply"
	CategoryOldPost  Category = "old_post"
	CategoryTerm     Category = "term"
)

// Facts are the normalised properties of one feed item that predicates
// consume. A zero PublishedAt means the timestamp was absent or unparseable.
type Facts struct {
	Text        string    `json:"text"`
	HasMedia    bool      `json:"has_media"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// Dated reports whether a publication timestamp was found.
func (f Facts) Dated() bool { return !f.PublishedAt.IsZero() }

// Decision is emitted once per item transition out of Unprocessed.
type Decision struct {
	ID        string     `json:"id"` // UUIDv7
	SessionID string     `json:"session_id"`
	PageURL   string     `json:"page_url"`
	State     State      `json:"state"`
	Reasons   []Category `json:"reasons,omitempty"` // triggered predicates, empty for kept items
	Text      string     `json:"text"`              // truncated to 280 runes
	HasMedia  bool       `json:"has_media"`
	Timestamp int64      `json:"timestamp"` // epoch milliseconds
}

// SessionEventType is the lifecycle transition reported by a SessionEvent.
type SessionEventType string

const (
	SessionStarted SessionEventType = "session_started"
	SessionStopped SessionEventType = "session_stopped"
	SessionAborted SessionEventType = "session_aborted" // toggle read or observer install failed
)

// SessionEvent reports an observation session transition.
type SessionEvent struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Type      SessionEventType `json:"type"`
	PageURL   string           `json:"page_url"`
	Toggles   *Toggles         `json:"toggles,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// NewID returns a time-sortable UUIDv7 string.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
