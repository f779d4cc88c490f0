package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/prometheus"
	"github.com/socialhomes/CaseClock/internal/interfaces/http/handlers"
	"github.com/socialhomes/CaseClock/internal/interfaces/http/middleware"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(deps map[string]handlers.Pinger) http.Handler {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "caseclock"}, logging.NewNop())
	if err != nil {
		panic(err)
	}
	return NewRouter(RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(deps),
		Logger:           logging.NewNop(),
		Metrics:          prometheus.NewAppMetrics(collector),
		MetricsCollector: collector,
		Mode:             "test",
	})
}

func TestRouter_Liveness(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_Readiness(t *testing.T) {
	r := newTestRouter(map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
}

func TestRouter_ReadinessDependencyDown(t *testing.T) {
	r := newTestRouter(map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{err: assert.AnError},
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	// Drive one request through the metrics middleware first.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "caseclock_http_requests_total")
}

func TestRouter_RequestIDHonoured(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "fixed-id")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get(middleware.RequestIDHeader))
}
