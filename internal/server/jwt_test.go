package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/server/middleware"
)

// Claims must satisfy both the jwt library's claims interface (embedded
// RegisteredClaims, whose GetSubject returns (string, error)) and the
// middleware's accessor, without one shadowing the other.
var (
	_ jwt.Claims               = (*Claims)(nil)
	_ middleware.SubjectGetter = (*Claims)(nil)
)

func newTestJWTService(expirationHours int) *JWTService {
	return NewJWTService(&config.AuthConfig{
		JWTSecret:       "test-secret",
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(1)

	token, expiresAt, err := svc.GenerateToken(operatorSubject)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operatorSubject, claims.TokenSubject())

	embedded, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, operatorSubject, embedded)
}

func TestJWTService_RejectsEmptyToken(t *testing.T) {
	svc := newTestJWTService(1)

	_, err := svc.ValidateToken("")

	assert.Error(t, err)
}

func TestJWTService_RejectsMalformedToken(t *testing.T) {
	svc := newTestJWTService(1)

	_, err := svc.ValidateToken("not.a.token")

	assert.Error(t, err)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	svc := newTestJWTService(1)
	other := NewJWTService(&config.AuthConfig{JWTSecret: "different-secret", ExpirationHours: 1})

	token, _, err := svc.GenerateToken(operatorSubject)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)

	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	// Negative expiration produces an already-expired token
	svc := newTestJWTService(-1)

	token, _, err := svc.GenerateToken(operatorSubject)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)

	assert.Error(t, err)
}

func TestAsTokenValidator(t *testing.T) {
	svc := newTestJWTService(1)

	token, _, err := svc.GenerateToken(operatorSubject)
	require.NoError(t, err)

	claims, err := svc.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, operatorSubject, claims.TokenSubject())
}
