package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service exports.
type AppMetrics struct {
	// panel cycle
	CyclesTotal     CounterVec
	CycleDuration   HistogramVec
	CoalescedTotal  CounterVec
	CategoriesShown GaugeVec
	ClicksTotal     CounterVec
	RefreshSignals  CounterVec

	// http
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultCycleDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		CyclesTotal:     collector.RegisterCounter("panel_cycles_total", "Refresh cycles by outcome", "outcome"),
		CycleDuration:   collector.RegisterHistogram("panel_cycle_duration_seconds", "Refresh cycle duration", DefaultCycleDurationBuckets, "outcome"),
		CoalescedTotal:  collector.RegisterCounter("panel_refresh_coalesced_total", "Refresh requests folded into an in-flight cycle"),
		CategoriesShown: collector.RegisterGauge("panel_categories", "Categories in the last rendered frame"),
		ClicksTotal:     collector.RegisterCounter("panel_clicks_total", "Category clicks by result", "result"),
		RefreshSignals:  collector.RegisterCounter("panel_refresh_signals_total", "Refresh signals by source", "source"),

		HTTPRequestsTotal:   collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route"),
		HTTPActiveRequests:  collector.RegisterGauge("http_active_requests", "In-flight HTTP requests"),
	}
}

// RecordCycle counts a finished cycle.
func (m *AppMetrics) RecordCycle(outcome string, d time.Duration) {
	m.CyclesTotal.WithLabelValues(outcome).Inc()
	m.CycleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordCoalesced counts a refresh folded into the in-flight cycle.
func (m *AppMetrics) RecordCoalesced() {
	m.CoalescedTotal.WithLabelValues().Inc()
}

// RecordCategories sets the number of categories last rendered.
func (m *AppMetrics) RecordCategories(n int) {
	m.CategoriesShown.WithLabelValues().Set(float64(n))
}

// RecordClick counts a click; result is applied, ignored or failed.
func (m *AppMetrics) RecordClick(result string) {
	m.ClicksTotal.WithLabelValues(result).Inc()
}

// RecordSignal counts a refresh signal from source (http, kafka, config).
func (m *AppMetrics) RecordSignal(source string) {
	m.RefreshSignals.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// InFlight returns the gauge of requests being served.
func (m *AppMetrics) InFlight() Gauge {
	return m.HTTPActiveRequests.WithLabelValues()
}

//Personal.AI order the ending
