package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_KEY_HASH", "$2a$10$fakehash")
	t.Setenv("JWT_EXPIRATION_HOURS", "12")

	cfg, err := NewAuthConfig()
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "$2a$10$fakehash", cfg.OperatorKeyHash)
	assert.Equal(t, 12, cfg.ExpirationHours)
}

func TestNewAuthConfig_DefaultExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_KEY_HASH", "$2a$10$fakehash")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewAuthConfig()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewAuthConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("API_KEY_HASH", "$2a$10$fakehash")

	_, err := NewAuthConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewAuthConfig_MissingKeyHash(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_KEY_HASH", "")

	_, err := NewAuthConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY_HASH")
}

func TestNewAuthConfig_InvalidExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("API_KEY_HASH", "$2a$10$fakehash")

	t.Setenv("JWT_EXPIRATION_HOURS", "abc")
	_, err := NewAuthConfig()
	assert.Error(t, err)

	t.Setenv("JWT_EXPIRATION_HOURS", "0")
	_, err = NewAuthConfig()
	assert.Error(t, err)
}

func TestOperatorKey_HashAndVerify(t *testing.T) {
	hash, err := HashOperatorKey("correct-horse-battery-staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	cfg := &AuthConfig{OperatorKeyHash: hash}

	assert.True(t, cfg.VerifyOperatorKey("correct-horse-battery-staple"))
	assert.False(t, cfg.VerifyOperatorKey("wrong-key"))
	assert.False(t, cfg.VerifyOperatorKey(""))
}

func TestHashOperatorKey_UniqueSalts(t *testing.T) {
	h1, err := HashOperatorKey("same-key")
	require.NoError(t, err)
	h2, err := HashOperatorKey("same-key")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
