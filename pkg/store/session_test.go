package store

import (
	"testing"
)

func TestPhaseTransitions(t *testing.T) {
	s := NewSessionState("s1", "qwen-turbo", "casual")

	if s.Phase() != PhaseActive {
		t.Errorf("new session phase = %s, want ACTIVE", s.Phase())
	}

	s.Turn = 4
	if s.Phase() != PhaseSticky {
		t.Errorf("turn 4 phase = %s, want STICKY_CANDIDATE", s.Phase())
	}

	s.EngageLock("repeated category")
	if s.Phase() != PhaseLocked {
		t.Errorf("locked phase = %s, want LOCKED", s.Phase())
	}
	if s.LockReason() != "repeated category" {
		t.Errorf("lock reason = %q", s.LockReason())
	}

	s.ClearLock()
	if s.Locked() {
		t.Error("ClearLock did not release the lock")
	}
	if s.LockReason() != "" {
		t.Errorf("unlocked reason = %q, want empty", s.LockReason())
	}
}

func TestPushCategoryCapsHistory(t *testing.T) {
	s := NewSessionState("s1", "qwen-turbo", "casual")

	for _, c := range []string{"course", "task", "notice", "user", "studio_management", "casual"} {
		s.PushCategory(c)
	}

	if len(s.History) != 5 {
		t.Fatalf("history length = %d, want 5", len(s.History))
	}
	if s.History[len(s.History)-1] != "casual" {
		t.Errorf("newest entry = %s, want casual", s.History[len(s.History)-1])
	}
	if s.Category != "casual" {
		t.Errorf("current category = %s, want casual", s.Category)
	}
}

func TestRepeatedCategory(t *testing.T) {
	tests := []struct {
		name    string
		history []string
		n       int
		want    bool
	}{
		{"empty history", nil, 3, false},
		{"too short", []string{"a", "a"}, 3, false},
		{"three same", []string{"a", "a", "a"}, 3, true},
		{"three same with prefix", []string{"b", "a", "a", "a"}, 3, true},
		{"broken run", []string{"a", "b", "a"}, 3, false},
		{"zero n", []string{"a"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SessionState{History: tt.history}
			if got := s.RepeatedCategory(tt.n); got != tt.want {
				t.Errorf("RepeatedCategory(%d) on %v = %v, want %v", tt.n, tt.history, got, tt.want)
			}
		})
	}
}
