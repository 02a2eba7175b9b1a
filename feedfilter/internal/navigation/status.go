package navigation

import (
	"time"

	"github.com/hazyhaar/leanbrew/feedfilter/verdict"
)

// SessionStatus describes one observation session.
type SessionStatus struct {
	ID        string           `json:"id"`
	PageURL   string           `json:"page_url"`
	Phase     Phase            `json:"phase"`
	StartedAt time.Time        `json:"started_at"`
	Toggles   *verdict.Toggles `json:"toggles,omitempty"`
	Passes    int64            `json:"passes"`
	Kept      int64            `json:"kept"`
	Removed   int64            `json:"removed"`
	Error     string           `json:"error,omitempty"`
}

// Status is a point-in-time snapshot of the monitor.
type Status struct {
	Location    string         `json:"location"`
	State       State          `json:"state"`
	Navigations int64          `json:"navigations"`
	Session     *SessionStatus `json:"session,omitempty"` // current session, nil when off the feed
	LastSession *SessionStatus `json:"last_session,omitempty"`
}

// Status returns a snapshot safe to retain.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Location: m.location, State: m.state, Navigations: m.navigations}
	if m.current != nil {
		cp := m.current.status
		st.Session = &cp
	}
	if m.last != nil {
		cp := *m.last
		st.LastSession = &cp
	}
	return st
}
