package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/clock"
	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/id"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/metrics"
	"github.com/secretshows/secretshows-server/internal/search"
	"github.com/secretshows/secretshows-server/internal/session"
)

// testNow sits before every upcoming event in the embedded catalog.
var testNow = time.Date(2026, time.November, 2, 12, 0, 0, 0, time.UTC)

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api      humatest.TestAPI
	clock    *clock.Manual
	registry *prometheus.Registry
}

type serverOption func(*config.Config, *Services)

// setupTestServer creates a test server backed by the embedded catalog and in-memory sessions.
func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Environment: "development"},
		Session: config.SessionConfig{
			AuthRateLimit: 100,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}

	c, err := catalog.Default()
	require.NoError(t, err)

	index, err := search.NewSearchIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	require.NoError(t, index.Rebuild(c))

	clk := clock.NewManual(testNow)
	manager := session.NewManager(session.ManagerConfig{
		Factory:      session.NewMemoryFactory().Open,
		Clock:        clk,
		StoreOptions: []session.Option{session.WithAuthDelay(0), session.WithClock(clk)},
	})

	services := &Services{
		Catalog:  catalog.Static(c),
		Sessions: manager,
		Search:   index,
		Clock:    clk,
	}
	for _, opt := range opts {
		opt(cfg, services)
	}

	registry := prometheus.NewRegistry()
	srv := NewServer(cfg, services, metrics.NewCollector(registry), registry, logger.Discard())
	t.Cleanup(srv.Close)

	return &testServer{
		Server:   srv,
		api:      humatest.Wrap(t, srv.API()),
		clock:    clk,
		registry: registry,
	}
}

// testEnvelope is the response envelope with typed data.
type testEnvelope[T any] struct {
	Version int           `json:"v"`
	Success bool          `json:"success"`
	Data    T             `json:"data"`
	Error   *APIErrorBody `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope
}

// newProfile returns a cookie header for a fresh browser profile.
func newProfile() string {
	return "Cookie: " + ProfileCookieName + "=" + id.NewProfile()
}

// login signs the profile in and fails the test otherwise.
func (ts *testServer) login(t *testing.T, profile, email string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/session/login", profile, map[string]any{
		"email":    email,
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestProfileCookie_IssuedWhenMissing(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/session")
	require.Equal(t, http.StatusOK, resp.Code)

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ProfileCookieName, cookies[0].Name)
	assert.True(t, id.IsProfile(cookies[0].Value))
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestProfileCookie_KeptWhenValid(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/session", newProfile())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, resp.Result().Cookies())
}

func TestProfileCookie_ReplacedWhenInvalid(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/session", "Cookie: "+ProfileCookieName+"=not-a-profile")
	require.Equal(t, http.StatusOK, resp.Code)

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "not-a-profile", cookies[0].Value)
}

func TestProfileCookie_SecureFromConfig(t *testing.T) {
	ts := setupTestServer(t, func(cfg *config.Config, _ *Services) {
		cfg.Session.CookieSecure = true
	})

	resp := ts.api.Get("/api/v1/session")
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestEnvelope_SuccessShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Equal(t, float64(EnvelopeVersion), raw["v"])
	assert.Equal(t, true, raw["success"])
	assert.Contains(t, raw, "data")
	assert.NotContains(t, raw, "error")
}

func TestEnvelope_ErrorShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/events/evt-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	assert.Equal(t, "Event evt-missing not found", envelope.Error.Message)
}

func TestEnvelope_HumaValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/events/evt-1/quote?tickets=99")
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION", envelope.Error.Code)
	assert.NotEmpty(t, envelope.Error.Details)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Get("/api/v1/genres")

	resp := ts.api.Get("/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `secretshows_http_requests_total{method="GET",route="/api/v1/genres",status_code="200"} 1`)
	assert.Empty(t, resp.Result().Cookies(), "metrics scrapes get no profile")
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/genres", "Origin: http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = ts.api.Get("/api/v1/genres", "Origin: https://elsewhere.example")
	assert.Empty(t, resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeHTTP_ServesJSON(t *testing.T) {
	ts := setupTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/genres", nil)
	ts.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}
