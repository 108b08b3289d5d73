package memory

import (
	"time"

	"studio-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps per-conversation routing state in memory.
// Entries idle longer than the TTL are swept in the background; a read
// of an expired entry behaves as "not found".
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	// Sweep expired sessions every fifth of the TTL
	c := cache.New(ttl, ttl/5)
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(session *store.SessionState) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.SessionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionState), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
