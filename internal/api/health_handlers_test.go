package api

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, testOptions())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
	assert.Equal(t, "search index empty", env.Data.Components["search"].Message)
}

func TestHealthCheck_DegradedWithoutDependencies(t *testing.T) {
	s := NewServer(nil, nil, testOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	api := humatest.Wrap(t, s.API())

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "database not configured", env.Data.Components["database"].Message)
	assert.Equal(t, "search service not configured", env.Data.Components["search"].Message)
}

func TestHealthCheck_UnhealthyAfterClose(t *testing.T) {
	ts := setupTestServer(t, testOptions())
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.Equal(t, "unhealthy", env.Data.Components["database"].Status)
}
