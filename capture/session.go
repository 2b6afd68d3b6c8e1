package capture

import (
	"sync"
	"time"

	"github.com/fwojciec/chatvault"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateInitializing State = iota
	StateActive
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session holds the per-page state of an Agent run: its lifecycle and the
// IDs of messages that already carry a save control.
type Session struct {
	mu        sync.Mutex
	url       string
	state     State
	startedAt time.Time
	injected  map[string]struct{}
}

// NewSession creates a Session for the page at url.
func NewSession(url string) *Session {
	return &Session{
		url:       url,
		state:     StateInitializing,
		startedAt: time.Now(),
		injected:  make(map[string]struct{}),
	}
}

// URL returns the page URL the session was created for.
func (s *Session) URL() string {
	return s.url
}

// StartedAt returns the session creation time.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate moves an initializing session to active.
func (s *Session) Activate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitializing {
		return chatvault.Errorf(chatvault.EINVALID, "cannot activate %s session", s.state)
	}
	s.state = StateActive
	return nil
}

// Stop moves the session to stopped. Stopping twice is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
}

// Injected reports whether message id already carries a control.
func (s *Session) Injected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.injected[id]
	return ok
}

// MarkInjected records that message id carries a control. It returns
// false if the id was already recorded or the session is stopped.
func (s *Session) MarkInjected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return false
	}
	if _, ok := s.injected[id]; ok {
		return false
	}
	s.injected[id] = struct{}{}
	return true
}

// InjectedCount returns the number of messages that carry a control.
func (s *Session) InjectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.injected)
}
