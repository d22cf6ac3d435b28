package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistStore(t *testing.T) {
	store := NewInMemoryBlacklistStore()

	blacklisted, err := store.IsBlacklisted("token-a")
	assert.NoError(t, err)
	assert.False(t, blacklisted)

	assert.NoError(t, store.AddToBlacklist("token-a", time.Now().Add(time.Hour)))

	blacklisted, err = store.IsBlacklisted("token-a")
	assert.NoError(t, err)
	assert.True(t, blacklisted)

	// other tokens stay unaffected
	blacklisted, err = store.IsBlacklisted("token-b")
	assert.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestBlacklistCleanUpExpired(t *testing.T) {
	store := NewInMemoryBlacklistStore()

	assert.NoError(t, store.AddToBlacklist("stale", time.Now().Add(-time.Minute)))
	assert.NoError(t, store.AddToBlacklist("fresh", time.Now().Add(time.Hour)))

	store.CleanUpExpired()

	stale, _ := store.IsBlacklisted("stale")
	fresh, _ := store.IsBlacklisted("fresh")
	assert.False(t, stale)
	assert.True(t, fresh)
}
