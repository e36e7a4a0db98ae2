package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docharvest/internal/config"
)

const testOperatorKey = "test-operator-key"

// newTestServer builds a server without a database connection; handler tests
// cover the validation paths that return before any query runs.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	hash, err := config.HashOperatorKey(testOperatorKey)
	require.NoError(t, err)

	authCfg := &config.AuthConfig{
		JWTSecret:       "test-secret",
		ExpirationHours: 1,
		OperatorKeyHash: hash,
	}
	return &Server{
		auth:       authCfg,
		jwtService: NewJWTService(authCfg),
	}
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHandleIssueToken_ValidKey(t *testing.T) {
	s := newTestServer(t)

	body := strings.NewReader(`{"key": "` + testOperatorKey + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
	w := httptest.NewRecorder()

	s.handleIssueToken(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := s.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, operatorSubject, claims.TokenSubject())
}

func TestHandleIssueToken_WrongKey(t *testing.T) {
	s := newTestServer(t)

	body := strings.NewReader(`{"key": "not-the-key"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/token", body)
	w := httptest.NewRecorder()

	s.handleIssueToken(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, errorBody(t, w), "invalid operator key")
}

func TestHandleIssueToken_MissingKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	s.handleIssueToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleIssueToken_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	s.handleIssueToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetSource_InvalidID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sources/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	s.handleGetSource(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "Invalid source ID")
}

func TestHandleSourceStats_InvalidID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/sources/abc/stats", nil)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()

	s.handleSourceStats(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListCursors_UnknownStatus(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/cursors?status=bogus", nil)
	w := httptest.NewRecorder()

	s.handleListCursors(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "Unknown cursor status")
}

func TestHandleListDocuments_UnknownType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents?type=invoice", nil)
	w := httptest.NewRecorder()

	s.handleListDocuments(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "unknown document type")
}

func TestHandleListDocuments_BadTimestamp(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents?since=yesterday", nil)
	w := httptest.NewRecorder()

	s.handleListDocuments(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "RFC 3339")
}

func TestHandleGetDocumentByHash_MissingHash(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/by-hash", nil)
	w := httptest.NewRecorder()

	s.handleGetDocumentByHash(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorBody(t, w), "Content hash is required")
}

func TestHandleGetDocument_InvalidID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	s.handleGetDocument(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExport_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	s.handleExport(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleExport_UnknownDocType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"doc_type": "invoice"}`))
	w := httptest.NewRecorder()

	s.handleExport(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		key          string
		defaultValue int
		maxValue     int
		want         int
	}{
		{name: "valid value", query: "?limit=25", key: "limit", defaultValue: 50, maxValue: 100, want: 25},
		{name: "missing value uses default", query: "?offset=10", key: "limit", defaultValue: 50, maxValue: 100, want: 50},
		{name: "value exceeds max", query: "?limit=200", key: "limit", defaultValue: 50, maxValue: 100, want: 100},
		{name: "invalid value uses default", query: "?limit=abc", key: "limit", defaultValue: 50, maxValue: 100, want: 50},
		{name: "negative value uses default", query: "?limit=-10", key: "limit", defaultValue: 50, maxValue: 100, want: 50},
		{name: "no max", query: "?offset=12345", key: "offset", defaultValue: 0, maxValue: 0, want: 12345},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/documents"+tt.query, nil)
			got := parseQueryInt(req, tt.key, tt.defaultValue, tt.maxValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQueryTime(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/documents?since=2024-06-01T12:00:00Z", nil)

	got, err := parseQueryTime(req, "since")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), got.UTC())

	missing, err := parseQueryTime(req, "until")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
