package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow("client"))
	assert.True(t, rl.Allow("client"))
	assert.True(t, rl.Allow("client"))
	// Лимит исчерпан
	assert.False(t, rl.Allow("client"))

	// Другой ключ считается отдельно
	assert.True(t, rl.Allow("other"))
}

func TestRateLimiterWindowExpires(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	time.Sleep(20 * time.Millisecond)

	// Новое окно начинается после истечения периода
	assert.True(t, rl.Allow("client"))
}

func TestRateLimiterReset(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"))

	rl.Reset("client")
	assert.True(t, rl.Allow("client"))
}

func TestRateLimiterGetRemaining(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	assert.Equal(t, 3, rl.GetRemaining("client"))
	rl.Allow("client")
	assert.Equal(t, 2, rl.GetRemaining("client"))
	rl.Allow("client")
	rl.Allow("client")
	assert.Equal(t, 0, rl.GetRemaining("client"))
}
