package router

import (
	"hash/fnv"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"studio-assistant-be/pkg/ai/classifier"
	"studio-assistant-be/pkg/store"
)

const lockReasonRepeated = "repeated category"

// Explicit topic-switch phrases that break stickiness
var topicSwitchPhrases = []string{
	"换个话题", "换一个话题", "聊点别的", "说点别的", "另一个问题",
	"switch topic", "new topic", "change the subject", "let's talk about",
}

// Config holds router tuning options.
type Config struct {
	DefaultModel      string
	LongInputRunes    int // hard override: input longer than this forces the top model
	ExtremeComplexity int // hard override: complexity at or above this forces the top model
	SwitchComplexity  int // sticky phase: complexity jump that justifies a switch
}

func DefaultConfig() Config {
	return Config{
		DefaultModel:      DefaultModel,
		LongInputRunes:    2000,
		ExtremeComplexity: 9,
		SwitchComplexity:  7,
	}
}

// Router picks which backend model answers each turn of a conversation.
// State per session id lives in the SessionStore; reads and writes for
// one session are serialized through a mutex stripe so concurrent turns
// cannot corrupt the sticky/lock logic. Different sessions never
// contend on the same stripe mutex for correctness, only for timing.
type Router struct {
	classifier *classifier.Classifier
	sessions   SessionStore
	cfg        Config
	logger     *log.Logger

	stripes [32]sync.Mutex
}

func NewRouter(cls *classifier.Classifier, sessions SessionStore, cfg Config, logger *log.Logger) *Router {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.LongInputRunes <= 0 {
		cfg.LongInputRunes = 2000
	}
	if cfg.ExtremeComplexity <= 0 {
		cfg.ExtremeComplexity = 9
	}
	if cfg.SwitchComplexity <= 0 {
		cfg.SwitchComplexity = 7
	}
	return &Router{
		classifier: cls,
		sessions:   sessions,
		cfg:        cfg,
		logger:     logger,
	}
}

// SelectModel decides which model handles this turn. It never fails:
// any internal error falls back to the default model and is logged.
// complexity is an externally supplied 0-10 signal (see ScoreComplexity).
func (r *Router) SelectModel(sessionID, queryText string, complexity int) (model string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("[ERROR] Model selection failed for session %s: %v", sessionID, rec)
			model = r.cfg.DefaultModel
		}
	}()

	mu := r.stripe(sessionID)
	mu.Lock()
	defer mu.Unlock()

	results := r.classifier.Classify(queryText)
	category := classifier.CategoryCasual
	if len(results) > 0 {
		category = results[0].Category
	}

	state, found := r.sessions.Get(sessionID)
	if !found {
		// NEW: expired or first-seen session starts fresh
		picked := r.pickModel(queryText, category, complexity)
		state = store.NewSessionState(sessionID, picked, category)
		r.sessions.Save(state)
		r.logger.Printf("[ROUTER] Session %s created: model=%s category=%s", sessionID, picked, category)
		return picked
	}

	if state.Locked() {
		// Model is pinned; history still advances so the lock can
		// release once the topic genuinely drifts.
		state.Turn++
		state.PushCategory(category)
		state.LastSeen = time.Now()
		if !state.RepeatedCategory(3) {
			r.logger.Printf("[ROUTER] Session %s lock released: topic drifted from %q", sessionID, state.LockReason())
			state.ClearLock()
		}
		r.sessions.Save(state)
		return state.Model
	}

	next := state.Model
	if override := r.hardOverride(queryText, results, complexity); override != "" {
		r.logger.Printf("[ROUTER] Session %s hard override -> %s", sessionID, override)
		next = override
	} else if r.shouldSwitch(state, queryText, category, complexity) {
		next = r.pickModel(queryText, category, complexity)
		r.logger.Printf("[ROUTER] Session %s switching %s -> %s (category=%s)", sessionID, state.Model, next, category)
	}

	state.Turn++
	state.PushCategory(category)
	state.LastSeen = time.Now()
	if next != state.Model {
		state.Model = next
		state.ClearLock()
	} else if state.Turn >= 3 && state.RepeatedCategory(3) {
		if !state.Locked() {
			r.logger.Printf("[ROUTER] Session %s locked: %s", sessionID, lockReasonRepeated)
		}
		state.EngageLock(lockReasonRepeated)
	}
	r.sessions.Save(state)
	return state.Model
}

// Snapshot returns a copy of the session state for inspection.
func (r *Router) Snapshot(sessionID string) (store.SessionState, bool) {
	mu := r.stripe(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, found := r.sessions.Get(sessionID)
	if !found {
		return store.SessionState{}, false
	}
	copied := *state
	copied.History = append([]string(nil), state.History...)
	if state.Lock != nil {
		lock := *state.Lock
		copied.Lock = &lock
	}
	return copied, true
}

// hardOverride fires independent of session history.
func (r *Router) hardOverride(queryText string, results []classifier.Result, complexity int) string {
	if utf8.RuneCountInString(queryText) > r.cfg.LongInputRunes || complexity >= r.cfg.ExtremeComplexity {
		return ModelMax
	}
	if len(results) > 0 && results[0].Category == classifier.CategoryCode && results[0].Score >= 0.5 {
		return ModelCoder
	}
	return ""
}

// shouldSwitch applies the phase rules: free switching while the
// session is young, strong signals required once it is sticky.
func (r *Router) shouldSwitch(state *store.SessionState, queryText, category string, complexity int) bool {
	if category == state.Category {
		return false
	}
	if state.Turn <= 3 {
		return true // ACTIVE: classification-driven switching allowed
	}

	// STICKY-CANDIDATE: one of three signals must fire
	lower := strings.ToLower(queryText)
	for _, phrase := range topicSwitchPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	if majorCategoryChange(state.Category, category) {
		return true
	}
	if complexity >= r.cfg.SwitchComplexity && modelRank(state.Model) < rankRequiredFor(complexity) {
		return true
	}
	return false
}

// pickModel is the priority table: length/complexity thresholds first,
// then category, with the category table as the final fallback.
func (r *Router) pickModel(queryText, category string, complexity int) string {
	n := utf8.RuneCountInString(queryText)
	switch {
	case complexity >= 8 || n > 1000:
		return ModelMax
	case category == classifier.CategoryCode:
		return ModelCoder
	case complexity >= 5 || n > 500:
		return ModelPlus
	}
	if m, ok := categoryModels[category]; ok {
		return m
	}
	return r.cfg.DefaultModel
}

// majorCategoryChange reports a casual<->technical jump, the kind of
// change stickiness should not suppress.
func majorCategoryChange(from, to string) bool {
	return (isCasual(from) && isTechnical(to)) || (isTechnical(from) && isCasual(to))
}

func isCasual(category string) bool {
	return category == classifier.CategoryCasual
}

func isTechnical(category string) bool {
	return category == classifier.CategoryCode || category == classifier.CategoryTechnical
}

func (r *Router) stripe(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &r.stripes[h.Sum32()%uint32(len(r.stripes))]
}
