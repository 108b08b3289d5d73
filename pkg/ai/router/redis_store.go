package router

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"studio-assistant-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "assistant_session:"

// RedisSessionStore keeps routing state in Redis so multiple instances
// can share sessions. Redis TTL handles idle expiry; failures degrade
// to "not found" so the router falls back to a fresh session.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, logger *log.Logger) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisSessionStore) Get(sessionID string) (*store.SessionState, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Printf("[WARN] Redis session read failed for %s: %v", sessionID, err)
		return nil, false
	}

	var state store.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Printf("[WARN] Corrupt session state for %s, treating as new: %v", sessionID, err)
		return nil, false
	}
	return &state, true
}

func (s *RedisSessionStore) Save(session *store.SessionState) {
	data, err := json.Marshal(session)
	if err != nil {
		s.logger.Printf("[ERROR] Session marshal failed for %s: %v", session.ID, err)
		return
	}

	ctx, cancel := s.opContext()
	defer cancel()
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		s.logger.Printf("[WARN] Redis session write failed for %s: %v", session.ID, err)
	}
}

func (s *RedisSessionStore) Delete(sessionID string) {
	ctx, cancel := s.opContext()
	defer cancel()
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		s.logger.Printf("[WARN] Redis session delete failed for %s: %v", sessionID, err)
	}
}

func (s *RedisSessionStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 3*time.Second)
}
