package router

import "studio-assistant-be/pkg/store"

// SessionStore persists per-conversation routing state. Implementations
// must treat entries idle beyond the session TTL as not found.
type SessionStore interface {
	Get(sessionID string) (*store.SessionState, bool)
	Save(session *store.SessionState)
	Delete(sessionID string)
}
