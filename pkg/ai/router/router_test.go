package router

import (
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"studio-assistant-be/pkg/ai/classifier"
	"studio-assistant-be/pkg/store"
)

type mapStore struct {
	mu       sync.Mutex
	sessions map[string]*store.SessionState
}

func newMapStore() *mapStore {
	return &mapStore{sessions: make(map[string]*store.SessionState)}
}

func (m *mapStore) Get(sessionID string) (*store.SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *mapStore) Save(session *store.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *mapStore) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func newTestRouter() (*Router, *mapStore) {
	sessions := newMapStore()
	logger := log.New(os.Stdout, "", 0)
	r := NewRouter(classifier.New(0.1), sessions, DefaultConfig(), logger)
	return r, sessions
}

func TestSelectModelNewSession(t *testing.T) {
	r, _ := newTestRouter()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"casual greeting", "你好", ModelLite},
		{"studio question", "工作室有哪些部门", ModelPlus},
		{"course question", "本周课程安排", ModelPlus},
		{"notice question", "最新公告", ModelLite},
		{"unclassified", "zzzz", ModelLite},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessionID := strings.Repeat("s", i+1) // fresh session per case
			got := r.SelectModel(sessionID, tt.query, 0)
			if got != tt.want {
				t.Errorf("SelectModel(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestSelectModelLocksOnRepeatedCategory(t *testing.T) {
	r, _ := newTestRouter()

	for i := 0; i < 3; i++ {
		if got := r.SelectModel("lock-session", "工作室部门情况", 0); got != ModelPlus {
			t.Fatalf("turn %d: model = %s, want %s", i+1, got, ModelPlus)
		}
	}

	state, ok := r.Snapshot("lock-session")
	if !ok {
		t.Fatal("session not found")
	}
	if state.Phase() != store.PhaseLocked {
		t.Errorf("phase = %s, want LOCKED", state.Phase())
	}
	if state.LockReason() == "" {
		t.Error("locked session must carry a reason")
	}
}

func TestLockedSessionKeepsModelThenDrifts(t *testing.T) {
	r, _ := newTestRouter()

	// Three studio turns lock the session to qwen-plus.
	for i := 0; i < 3; i++ {
		r.SelectModel("drift", "工作室部门情况", 0)
	}

	// A casual turn while locked still answers with the pinned model,
	// but the history drift releases the lock for the turns after.
	if got := r.SelectModel("drift", "你好", 0); got != ModelPlus {
		t.Errorf("locked turn model = %s, want %s", got, ModelPlus)
	}

	state, _ := r.Snapshot("drift")
	if state.Locked() {
		t.Error("lock should release after topic drift")
	}

	// Now sticky but unlocked: a casual -> code jump is a major change
	// and switches the model.
	if got := r.SelectModel("drift", "帮我写代码实现一个排序脚本", 0); got != ModelCoder {
		t.Errorf("post-drift code query model = %s, want %s", got, ModelCoder)
	}
}

func TestStickySessionResistsWeakSwitches(t *testing.T) {
	r, _ := newTestRouter()

	// Build up past the active window with alternating studio/course
	// turns so no lock engages.
	queries := []string{"工作室部门情况", "本周课程安排", "工作室部门情况", "本周课程安排"}
	for _, q := range queries {
		r.SelectModel("sticky", q, 0)
	}

	state, _ := r.Snapshot("sticky")
	if state.Phase() != store.PhaseSticky {
		t.Fatalf("phase = %s, want STICKY_CANDIDATE", state.Phase())
	}

	// A low-complexity notice question is a weak signal; the session
	// keeps its current model.
	before := state.Model
	if got := r.SelectModel("sticky", "最新公告", 0); got != before {
		t.Errorf("weak switch changed model: %s -> %s", before, got)
	}
}

func TestStickySessionSwitchesOnExplicitPhrase(t *testing.T) {
	r, _ := newTestRouter()

	queries := []string{"工作室部门情况", "本周课程安排", "工作室部门情况", "本周课程安排"}
	for _, q := range queries {
		r.SelectModel("phrase", q, 0)
	}

	// The explicit phrase overrides stickiness even for a weak target.
	got := r.SelectModel("phrase", "换个话题，最新公告有什么", 0)
	if got != ModelLite {
		t.Errorf("explicit switch model = %s, want %s", got, ModelLite)
	}
}

func TestHardOverrides(t *testing.T) {
	r, _ := newTestRouter()

	longInput := strings.Repeat("长", 2100)
	if got := r.SelectModel("hard-long", longInput, 0); got != ModelMax {
		t.Errorf("long input model = %s, want %s", got, ModelMax)
	}

	if got := r.SelectModel("hard-complex", "你好", 9); got != ModelMax {
		t.Errorf("extreme complexity model = %s, want %s", got, ModelMax)
	}
}

func TestModelChangeClearsLock(t *testing.T) {
	r, sessions := newTestRouter()

	for i := 0; i < 3; i++ {
		r.SelectModel("clear", "工作室部门情况", 0)
	}
	state, _ := sessions.Get("clear")
	if !state.Locked() {
		t.Fatal("precondition: session should be locked")
	}

	// Drift release, then a switch; the new model must start unlocked.
	r.SelectModel("clear", "你好", 0)
	r.SelectModel("clear", "帮我写代码实现一个排序脚本", 0)

	state, _ = sessions.Get("clear")
	if state.Locked() {
		t.Error("lock must clear when the model changes")
	}
	if state.Model != ModelCoder {
		t.Errorf("model = %s, want %s", state.Model, ModelCoder)
	}
}

func TestSelectModelConcurrentSameSession(t *testing.T) {
	r, _ := newTestRouter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SelectModel("concurrent", "工作室部门情况", 0)
		}()
	}
	wg.Wait()

	state, ok := r.Snapshot("concurrent")
	if !ok {
		t.Fatal("session not found")
	}
	if state.Turn != 50 {
		t.Errorf("turn = %d, want 50", state.Turn)
	}
	if len(state.History) > 5 {
		t.Errorf("history length = %d, want <= 5", len(state.History))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r, sessions := newTestRouter()

	r.SelectModel("snap", "工作室部门情况", 0)
	snap, _ := r.Snapshot("snap")
	snap.History[0] = "tampered"
	snap.Model = "tampered"

	state, _ := sessions.Get("snap")
	if state.History[0] == "tampered" || state.Model == "tampered" {
		t.Error("Snapshot must not share memory with live state")
	}
}
