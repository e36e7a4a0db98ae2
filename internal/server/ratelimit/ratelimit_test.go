package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowsWithinBurst(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, PerMinute: 60, Burst: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("client-a")
		assert.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 60, info.Limit)
	}

	allowed, info := l.Allow("client-a")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, PerMinute: 60, Burst: 1})
	defer l.Stop()

	allowed, _ := l.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = l.Allow("client-a")
	require.False(t, allowed)

	allowed, _ = l.Allow("client-b")
	assert.True(t, allowed)
}

func TestLimiter_DisabledAllowsEverything(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := l.Allow("client-a")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	// 600 per minute = 10 per second, so a 200ms sleep refills ~2 tokens
	l := NewLimiter(&Config{Enabled: true, PerMinute: 600, Burst: 1})
	defer l.Stop()

	allowed, _ := l.Allow("client-a")
	require.True(t, allowed)
	allowed, _ = l.Allow("client-a")
	require.False(t, allowed)

	time.Sleep(200 * time.Millisecond)

	allowed, _ = l.Allow("client-a")
	assert.True(t, allowed)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 120, cfg.PerMinute)
	assert.Equal(t, 120, cfg.Burst)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg := LoadConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 30, cfg.PerMinute)
	assert.Equal(t, 5, cfg.Burst)
}
