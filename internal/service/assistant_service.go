package service

import (
	"context"
	"sync"
	"time"

	"studio-assistant-be/internal/dto"
	"studio-assistant-be/internal/pkg/logger"
	"studio-assistant-be/pkg/ai/router"
	"studio-assistant-be/pkg/rag"
)

// Counters idle past this window no longer say anything about the
// session's recent volume and are swept.
const volumeTTL = 30 * time.Minute

type IAssistantService interface {
	Ask(ctx context.Context, req dto.AssistantAskRequest) (*dto.AssistantAskResponse, error)
}

// assistantService is the facade callers hit per turn: score the query,
// pick the model for the session, then retrieve supporting context.
type volumeEntry struct {
	count    int
	lastSeen time.Time
}

type assistantService struct {
	router   *router.Router
	pipeline *rag.Pipeline
	logger   logger.ILogger

	volumeTTL time.Duration

	mu        sync.Mutex
	volumes   map[string]*volumeEntry
	lastSweep time.Time
}

func NewAssistantService(r *router.Router, p *rag.Pipeline, log logger.ILogger) IAssistantService {
	return &assistantService{
		router:    r,
		pipeline:  p,
		logger:    log,
		volumeTTL: volumeTTL,
		volumes:   make(map[string]*volumeEntry),
	}
}

// bumpVolume counts one more ask for the session and returns the new
// count. Stale sessions are swept at most once per TTL window so the
// map tracks only recently active sessions.
func (s *assistantService) bumpVolume(sessionID string, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.volumeTTL {
		for id, e := range s.volumes {
			if now.Sub(e.lastSeen) >= s.volumeTTL {
				delete(s.volumes, id)
			}
		}
		s.lastSweep = now
	}

	e, ok := s.volumes[sessionID]
	if !ok {
		e = &volumeEntry{}
		s.volumes[sessionID] = e
	}
	e.count++
	e.lastSeen = now
	return e.count
}

func (s *assistantService) Ask(ctx context.Context, req dto.AssistantAskRequest) (*dto.AssistantAskResponse, error) {
	volume := s.bumpVolume(req.SessionId, time.Now())

	complexity := router.ScoreComplexity(req.Query, volume)
	model := s.router.SelectModel(req.SessionId, req.Query, complexity)

	result := s.pipeline.Retrieve(ctx, req.Query, 0, req.CallerId)

	s.logger.Info("ASSISTANT", "Handled turn", map[string]interface{}{
		"session_id": req.SessionId,
		"model":      model,
		"complexity": complexity,
		"matches":    len(result.Matches),
	})

	return &dto.AssistantAskResponse{
		Model:      model,
		Complexity: complexity,
		Matches:    result.Matches,
		Summary:    result.Summary,
	}, nil
}
