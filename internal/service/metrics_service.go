package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gradingRuns     *prometheus.CounterVec
	gradingDuration *prometheus.HistogramVec
	exportJobs      *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService registers the service's Prometheus collectors on a
// private registry so the default one stays untouched in tests.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	gradingRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grading_runs_total",
		Help: "Total grading pipeline runs by operation and outcome",
	}, []string{"operation", "outcome"})

	gradingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grading_run_duration_seconds",
		Help:    "Duration of grading pipeline runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grade_export_jobs_total",
		Help: "Total grade-sheet export jobs by terminal status",
	}, []string{"status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gradingRuns, gradingDuration, exportJobs, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gradingRuns:     gradingRuns,
		gradingDuration: gradingDuration,
		exportJobs:      exportJobs,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGradingRun records one pipeline run. Operation is
// "calculate_external" or "generate_grade_details"; outcome is "success",
// "validation_failed" or "error".
func (m *MetricsService) ObserveGradingRun(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gradingRuns.WithLabelValues(operation, outcome).Inc()
	m.gradingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveExportJob counts an export job reaching a terminal status.
func (m *MetricsService) ObserveExportJob(status string) {
	if m == nil {
		return
	}
	m.exportJobs.WithLabelValues(status).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}
