// Package config provides authentication configuration for the status API.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds configuration for API token issuance and validation.
// Operator access is a single shared key stored as a bcrypt hash; a valid key
// is exchanged for a short-lived JWT at POST /auth/token.
type AuthConfig struct {
	JWTSecret       string
	ExpirationHours int
	OperatorKeyHash string // bcrypt hash of the operator key
}

// NewAuthConfig creates auth configuration from environment variables.
// It reads JWT_SECRET (required), API_KEY_HASH (required) and
// JWT_EXPIRATION_HOURS (default: 24).
func NewAuthConfig() (*AuthConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	keyHash := os.Getenv("API_KEY_HASH")
	if keyHash == "" {
		return nil, fmt.Errorf("API_KEY_HASH is required but not set")
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}
	if expirationHours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", expirationHours)
	}

	return &AuthConfig{
		JWTSecret:       secret,
		ExpirationHours: expirationHours,
		OperatorKeyHash: keyHash,
	}, nil
}

// HashOperatorKey hashes an operator key for storage in API_KEY_HASH
func HashOperatorKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash operator key: %w", err)
	}
	return string(hash), nil
}

// VerifyOperatorKey verifies a presented key against the stored bcrypt hash
func (c *AuthConfig) VerifyOperatorKey(key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.OperatorKeyHash), []byte(key)) == nil
}
