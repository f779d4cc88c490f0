package prometheus

import "time"

// AppMetrics holds every metric the service emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Assessments
	AssessmentsTotal CounterVec

	// Compliance sweeps
	ScansTotal      CounterVec
	ScanDuration    HistogramVec
	CaseloadByState GaugeVec

	// Breach event stream
	BreachEventsTotal CounterVec

	// Infrastructure
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	DBQueryDuration  HistogramVec
}

var (
	// DefaultHTTPDurationBuckets covers request latencies up to 10s.
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	// DefaultScanDurationBuckets covers sweep runtimes up to half an hour.
	DefaultScanDurationBuckets = []float64{.1, .5, 1, 5, 15, 60, 300, 900, 1800}

	// DefaultDBDurationBuckets covers query latencies up to 5s.
	DefaultDBDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers every metric and returns the populated struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.AssessmentsTotal = collector.RegisterCounter("assessments_total", "Case assessments by category and status", "category", "status")

	m.ScansTotal = collector.RegisterCounter("scans_total", "Compliance sweeps completed")
	m.ScanDuration = collector.RegisterHistogram("scan_duration_seconds", "Compliance sweep duration", DefaultScanDurationBuckets)
	m.CaseloadByState = collector.RegisterGauge("caseload", "Open cases by SLA state at last sweep", "state")

	m.BreachEventsTotal = collector.RegisterCounter("breach_events_total", "Breach events published", "category")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "query")

	return m
}

// RecordAssessment counts one assessment by category and SLA status.
func (m *AppMetrics) RecordAssessment(category, status string) {
	m.AssessmentsTotal.WithLabelValues(category, status).Inc()
}

// RecordScan records one sweep's tallies and duration.
func (m *AppMetrics) RecordScan(compliant, atRisk, breached int, took time.Duration) {
	m.ScansTotal.WithLabelValues().Inc()
	m.ScanDuration.WithLabelValues().Observe(took.Seconds())
	m.CaseloadByState.WithLabelValues("compliant").Set(float64(compliant))
	m.CaseloadByState.WithLabelValues("at_risk").Set(float64(atRisk))
	m.CaseloadByState.WithLabelValues("breached").Set(float64(breached))
}

// RecordBreachPublished counts one published breach event.
func (m *AppMetrics) RecordBreachPublished(category string) {
	m.BreachEventsTotal.WithLabelValues(category).Inc()
}
