package service

import (
	"testing"
	"time"
)

func newVolumeService(ttl time.Duration) *assistantService {
	return &assistantService{
		volumeTTL: ttl,
		volumes:   make(map[string]*volumeEntry),
	}
}

func TestBumpVolumeCountsPerSession(t *testing.T) {
	s := newVolumeService(time.Minute)
	now := time.Now()

	if got := s.bumpVolume("a", now); got != 1 {
		t.Fatalf("first ask volume = %d, want 1", got)
	}
	if got := s.bumpVolume("a", now.Add(time.Second)); got != 2 {
		t.Fatalf("second ask volume = %d, want 2", got)
	}
	if got := s.bumpVolume("b", now.Add(time.Second)); got != 1 {
		t.Fatalf("other session volume = %d, want 1", got)
	}
}

func TestBumpVolumeSweepsIdleSessions(t *testing.T) {
	ttl := time.Minute
	s := newVolumeService(ttl)
	now := time.Now()

	s.bumpVolume("stale", now)
	s.bumpVolume("stale", now.Add(time.Second))

	// A later ask from another session triggers the sweep; the idle
	// counter must be gone and not linger for the process lifetime.
	later := now.Add(2 * ttl)
	if got := s.bumpVolume("fresh", later); got != 1 {
		t.Fatalf("fresh session volume = %d, want 1", got)
	}
	if _, ok := s.volumes["stale"]; ok {
		t.Error("idle session counter survived the sweep")
	}
	if len(s.volumes) != 1 {
		t.Errorf("map holds %d entries, want 1", len(s.volumes))
	}

	// The stale session returning starts over.
	if got := s.bumpVolume("stale", later.Add(time.Second)); got != 1 {
		t.Errorf("returning session volume = %d, want 1", got)
	}
}
