package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/config"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeEnvelope[HealthResponse](t, resp).Data
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "in-memory storage", health.Components["database"].Message)
	assert.Equal(t, "healthy", health.Components["search"].Status)
	assert.Equal(t, "no active profiles", health.Components["sessions"].Message)
	assert.Empty(t, resp.Result().Cookies(), "health checks get no profile")
}

func TestHealthCheck_CountsProfiles(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Get("/api/v1/session", newProfile())

	resp := ts.api.Get("/health")
	health := decodeEnvelope[HealthResponse](t, resp).Data
	assert.Equal(t, "1 active profile", health.Components["sessions"].Message)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupTestServer(t, func(_ *config.Config, s *Services) {
		s.Database = pingerFunc(func(context.Context) error { return errors.New("disk gone") })
	})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeEnvelope[HealthResponse](t, resp).Data
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "unhealthy", health.Components["database"].Status)
}

func TestHealthCheck_NoSearchIndex(t *testing.T) {
	ts := setupTestServer(t, func(_ *config.Config, s *Services) {
		s.Search = nil
	})

	resp := ts.api.Get("/health")
	health := decodeEnvelope[HealthResponse](t, resp).Data
	assert.Equal(t, "degraded", health.Status)

	resp = ts.api.Get("/api/v1/search?q=luna")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestFormatSessionStatus(t *testing.T) {
	assert.Equal(t, "no active profiles", formatSessionStatus(0))
	assert.Equal(t, "1 active profile", formatSessionStatus(1))
	assert.Equal(t, "12 active profiles", formatSessionStatus(12))
}
