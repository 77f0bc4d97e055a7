package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mastry-api/internal/diagnostics"
	"github.com/wolfman30/mastry-api/internal/docstore"
	httpmiddleware "github.com/wolfman30/mastry-api/internal/http/middleware"
	"github.com/wolfman30/mastry-api/internal/leads"
	"github.com/wolfman30/mastry-api/internal/observability/metrics"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

type testEnv struct {
	router http.Handler
	store  *docstore.MemoryStore
}

func newTestRouter(t *testing.T, withStore bool, limiter httpmiddleware.Limiter) testEnv {
	t.Helper()

	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	m := metrics.NewLeadMetrics(reg)

	var env testEnv
	var store docstore.Store
	if withStore {
		env.store = docstore.NewMemoryStore("mastry")
		store = env.store
	}

	cfg := &Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(store, nil, m, logger),
		DiagnosticsHandler: diagnostics.NewHandler(diagnostics.NewProber(store, withStore), diagnostics.ConfigFlags{DatabaseURLSet: withStore}, m, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"*"},
		LeadLimiter:        limiter,
	}
	env.router = New(cfg)
	return env
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	env := newTestRouter(t, false, nil)

	rr := do(t, env.router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouterStaticEndpoints(t *testing.T) {
	env := newTestRouter(t, false, nil)

	for _, path := range []string{"/", "/api/company", "/api/services"} {
		rr := do(t, env.router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"), path)
	}

	rr := do(t, env.router, http.MethodGet, "/", nil)
	var root map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &root))
	assert.Equal(t, "SPEED OF MASTRY", root["name"])
	assert.Equal(t, "Saudi Arabia", root["hq"])
}

func TestRouterCreateLead(t *testing.T) {
	env := newTestRouter(t, true, nil)

	rr := do(t, env.router, http.MethodPost, "/api/leads", []byte(`{"name":"Ada","email":"ada@example.com"}`))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp leads.CreateLeadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.ID)

	var stored leads.Lead
	require.NoError(t, env.store.Fetch(context.Background(), leads.Collection, resp.ID, &stored))
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Nil(t, stored.Company)
	assert.Equal(t, 1, env.store.Count(leads.Collection))
}

func TestRouterCreateLeadValidation(t *testing.T) {
	env := newTestRouter(t, true, nil)

	cases := []struct {
		body  string
		field string
	}{
		{`{"name":"","email":"ada@example.com"}`, "name"},
		{`{"name":"Ada","email":"not-an-email"}`, "email"},
	}
	for _, tc := range cases {
		rr := do(t, env.router, http.MethodPost, "/api/leads", []byte(tc.body))

		require.Equal(t, http.StatusBadRequest, rr.Code, tc.body)
		var resp leads.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Detail, tc.field)
	}
	assert.Equal(t, 0, env.store.Count(leads.Collection))
}

func TestRouterCreateLeadWithoutDatabase(t *testing.T) {
	env := newTestRouter(t, false, nil)

	rr := do(t, env.router, http.MethodPost, "/api/leads", []byte(`{"name":"Ada","email":"ada@example.com"}`))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouterDiagnosticsWithoutDatabase(t *testing.T) {
	env := newTestRouter(t, false, nil)

	rr := do(t, env.router, http.MethodGet, "/test", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "✅ Running", report.Backend)
	assert.Equal(t, "❌ Not Available", report.Database)
	assert.Equal(t, "❌ Not Set", report.DatabaseURL)
	assert.Equal(t, "❌ Not Set", report.DatabaseName)
	assert.Equal(t, []string{}, report.Collections)
}

func TestRouterDiagnosticsAfterLead(t *testing.T) {
	env := newTestRouter(t, true, nil)
	require.Equal(t, http.StatusOK, do(t, env.router, http.MethodPost, "/api/leads", []byte(`{"name":"Ada","email":"ada@example.com"}`)).Code)

	rr := do(t, env.router, http.MethodGet, "/test", nil)

	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "✅ Connected & Working", report.Database)
	assert.Equal(t, "Connected", report.ConnectionStatus)
	assert.Equal(t, []string{"lead"}, report.Collections)
}

func TestRouterLeadRateLimit(t *testing.T) {
	env := newTestRouter(t, true, httpmiddleware.NewRateLimiter(0, 1))
	body := []byte(`{"name":"Ada","email":"ada@example.com"}`)

	assert.Equal(t, http.StatusOK, do(t, env.router, http.MethodPost, "/api/leads", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, env.router, http.MethodPost, "/api/leads", body).Code)
	assert.Equal(t, 1, env.store.Count(leads.Collection))

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, env.router, http.MethodGet, "/api/company", nil).Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	env := newTestRouter(t, true, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://speedofmastry.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://speedofmastry.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterMetricsEndpoint(t *testing.T) {
	env := newTestRouter(t, true, nil)
	do(t, env.router, http.MethodPost, "/api/leads", []byte(`{"name":"Ada","email":"ada@example.com"}`))

	rr := do(t, env.router, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `mastry_leads_submissions_total{outcome="created"} 1`)
}

func TestRouterUnknownRoute(t *testing.T) {
	env := newTestRouter(t, false, nil)
	assert.Equal(t, http.StatusNotFound, do(t, env.router, http.MethodGet, "/nope", nil).Code)
}
