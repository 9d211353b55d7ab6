package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVersionHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()

	versionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["version"])
	assert.Contains(t, body, "build")
	assert.Contains(t, body, "commit")
}

func TestRequireUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/signals?user=trader%40example.com", nil)
	rec := httptest.NewRecorder()

	user, ok := requireUser(rec, req)
	require.True(t, ok)
	assert.Equal(t, "trader@example.com", user)
}

func TestRequireUserMissing(t *testing.T) {
	for _, target := range []string{"/api/signals", "/api/signals?user=", "/api/signals?user=%20"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()

		_, ok := requireUser(rec, req)
		assert.False(t, ok, "target %s", target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}
