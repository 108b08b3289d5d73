package store

import "time"

// Routing phases derived from session state
const (
	PhaseActive = "ACTIVE"           // early turns, classification-driven switching allowed
	PhaseSticky = "STICKY_CANDIDATE" // turn > 3, switching needs a strong signal
	PhaseLocked = "LOCKED"           // repeated category, model pinned
)

// historyCap bounds the category history to the most recent entries
const historyCap = 5

// Lock records why a session is pinned to its current model.
// A session is locked if and only if this is non-nil, so a locked
// session always carries a reason.
type Lock struct {
	Reason string `json:"reason"`
}

// SessionState is the per-conversation routing state.
// It is owned exclusively by the router; one instance per session id.
type SessionState struct {
	ID       string    `json:"id"`
	Model    string    `json:"model"`
	Category string    `json:"category"`
	History  []string  `json:"history"` // last 5 question categories, most-recent-last
	Turn     int       `json:"turn"`    // monotonically increasing, starts at 1
	Lock     *Lock     `json:"lock,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// NewSessionState creates a fresh state starting at turn 1.
func NewSessionState(id, defaultModel, defaultCategory string) *SessionState {
	return &SessionState{
		ID:       id,
		Model:    defaultModel,
		Category: defaultCategory,
		History:  []string{defaultCategory},
		Turn:     1,
		LastSeen: time.Now(),
	}
}

// Phase reports the current routing phase.
func (s *SessionState) Phase() string {
	if s.Lock != nil {
		return PhaseLocked
	}
	if s.Turn > 3 {
		return PhaseSticky
	}
	return PhaseActive
}

// Locked reports whether the session is pinned to its current model.
func (s *SessionState) Locked() bool {
	return s.Lock != nil
}

// LockReason returns the lock reason, if any.
func (s *SessionState) LockReason() string {
	if s.Lock == nil {
		return ""
	}
	return s.Lock.Reason
}

// EngageLock pins the session to its current model.
func (s *SessionState) EngageLock(reason string) {
	s.Lock = &Lock{Reason: reason}
}

// ClearLock releases the pin.
func (s *SessionState) ClearLock() {
	s.Lock = nil
}

// PushCategory appends a category to the history, capped at the
// most recent 5 entries, and makes it the current category.
func (s *SessionState) PushCategory(category string) {
	s.Category = category
	s.History = append(s.History, category)
	if len(s.History) > historyCap {
		s.History = s.History[len(s.History)-historyCap:]
	}
}

// RepeatedCategory reports whether the last n history entries
// all share the same category.
func (s *SessionState) RepeatedCategory(n int) bool {
	if n <= 0 || len(s.History) < n {
		return false
	}
	last := s.History[len(s.History)-1]
	for i := len(s.History) - n; i < len(s.History); i++ {
		if s.History[i] != last {
			return false
		}
	}
	return true
}
