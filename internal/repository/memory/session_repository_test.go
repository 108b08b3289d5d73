package memory

import (
	"testing"
	"time"

	"studio-assistant-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	state := store.NewSessionState("s1", "qwen-plus", "course")
	repo.Save(state)

	got, found := repo.Get("s1")
	require.True(t, found)
	assert.Equal(t, "qwen-plus", got.Model)
	assert.Equal(t, "course", got.Category)
	assert.Equal(t, 1, got.Turn)

	_, found = repo.Get("missing")
	assert.False(t, found)

	repo.Delete("s1")
	_, found = repo.Get("s1")
	assert.False(t, found)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(50 * time.Millisecond)

	repo.Save(store.NewSessionState("s1", "qwen-turbo", "casual"))
	time.Sleep(80 * time.Millisecond)

	_, found := repo.Get("s1")
	assert.False(t, found, "expired session must read as not found")
}

func TestSessionRepositorySaveRefreshesTTL(t *testing.T) {
	repo := NewSessionRepository(80 * time.Millisecond)

	state := store.NewSessionState("s1", "qwen-turbo", "casual")
	repo.Save(state)

	// Re-saving within the window restarts the idle clock.
	time.Sleep(50 * time.Millisecond)
	repo.Save(state)
	time.Sleep(50 * time.Millisecond)

	_, found := repo.Get("s1")
	assert.True(t, found, "recently saved session should survive")
}
