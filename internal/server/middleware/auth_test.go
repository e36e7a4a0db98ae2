package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator accepts a single token string and returns a fixed subject.
type stubValidator struct {
	token   string
	subject string
}

type stubClaims struct {
	subject string
}

func (c *stubClaims) TokenSubject() string { return c.subject }

func (v *stubValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	if tokenString != v.token {
		return nil, fmt.Errorf("invalid token")
	}
	return &stubClaims{subject: v.subject}, nil
}

func protectedHandler(t *testing.T, wantSubject string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := GetSubject(r)
		require.NoError(t, err)
		assert.Equal(t, wantSubject, subject)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{token: "good-token", subject: "operator"})
	handler := mw(protectedHandler(t, "operator"))

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	mw := AuthMiddleware(&stubValidator{token: "good-token", subject: "operator"})
	handler := mw(protectedHandler(t, "operator"))

	req := httptest.NewRequest(http.MethodGet, "/sources", nil)
	req.Header.Set("Authorization", "bearer good-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic good-token"},
		{name: "no token", header: "Bearer"},
		{name: "invalid token", header: "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := AuthMiddleware(&stubValidator{token: "good-token", subject: "operator"})
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/sources", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestGetSubject_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sources", nil)

	_, err := GetSubject(req)

	assert.Error(t, err)
}
