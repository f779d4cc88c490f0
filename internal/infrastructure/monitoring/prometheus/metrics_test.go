package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
)

func newCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "caseclock"}, logging.NewNop())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestNewMetricsCollectorRequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNop())
	require.Error(t, err)
}

func TestRegisterAndScrape(t *testing.T) {
	c := newCollector(t)

	counter := c.RegisterCounter("breach_events_total", "Breach events published", "category")
	counter.WithLabelValues("repair").Inc()
	counter.WithLabelValues("repair").Add(2)

	gauge := c.RegisterGauge("caseload", "Open cases by SLA state", "state")
	gauge.WithLabelValues("breached").Set(7)

	hist := c.RegisterHistogram("scan_duration_seconds", "Sweep duration", nil)
	hist.WithLabelValues().Observe(0.25)

	body := scrape(t, c)
	assert.Contains(t, body, `caseclock_breach_events_total{category="repair"} 3`)
	assert.Contains(t, body, `caseclock_caseload{state="breached"} 7`)
	assert.Contains(t, body, "caseclock_scan_duration_seconds_count")
}

func TestRegisterTwiceReturnsSameMetric(t *testing.T) {
	c := newCollector(t)

	first := c.RegisterCounter("scans_total", "Sweeps completed")
	second := c.RegisterCounter("scans_total", "Sweeps completed")
	first.WithLabelValues().Inc()
	second.WithLabelValues().Inc()

	assert.Contains(t, scrape(t, c), "caseclock_scans_total 2")
}

func TestRegistrationConflictFallsBackToNoop(t *testing.T) {
	c := newCollector(t)

	// Same name, different label set: the second registration cannot
	// succeed and must degrade to a no-op rather than panic.
	c.RegisterCounter("assessments_total", "x", "category")
	dup := c.RegisterGauge("assessments_total", "x")
	dup.WithLabelValues().Set(1)
}

func TestAppMetrics(t *testing.T) {
	c := newCollector(t)
	m := NewAppMetrics(c)

	m.RecordAssessment("repair", "within")
	m.RecordScan(10, 3, 2, 1500*time.Millisecond)
	m.RecordBreachPublished("hazard")

	body := scrape(t, c)
	assert.Contains(t, body, `caseclock_assessments_total{category="repair",status="within"} 1`)
	assert.Contains(t, body, `caseclock_caseload{state="at_risk"} 3`)
	assert.Contains(t, body, `caseclock_breach_events_total{category="hazard"} 1`)
	assert.True(t, strings.Contains(body, "caseclock_scan_duration_seconds_sum"))
}

func TestTimer(t *testing.T) {
	c := newCollector(t)
	hist := c.RegisterHistogram("db_query_duration_seconds", "Query duration", nil, "query")

	timer := NewTimer(hist.WithLabelValues("list_open"))
	timer.ObserveDuration()

	assert.Contains(t, scrape(t, c), `caseclock_db_query_duration_seconds_count{query="list_open"} 1`)
}
