package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the service. Each collector owns
// its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec

	// Query bus metrics
	QueryRequests *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Business metrics
	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	AnswersSubmitted  *prometheus.CounterVec
	SessionScores     prometheus.Histogram
}

// NewCollector creates a collector whose metrics are prefixed with namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DBDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Database operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"resource"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"resource"}),
		CacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache operations that failed or were short-circuited",
		}, []string{"operation"}),
		QueryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_bus_requests_total",
			Help:      "Queries dispatched through the query bus",
		}, []string{"query", "status"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_bus_duration_seconds",
			Help:      "Query handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "practice_sessions_started_total",
			Help:      "Practice sessions started",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "practice_sessions_completed_total",
			Help:      "Practice sessions completed",
		}),
		AnswersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "practice_answers_submitted_total",
			Help:      "Answers submitted, by correctness",
		}, []string{"correct"}),
		SessionScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "practice_session_score",
			Help:      "Distribution of completed session scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.DBOperations,
		c.DBDuration,
		c.CacheHits,
		c.CacheMisses,
		c.CacheErrors,
		c.QueryRequests,
		c.QueryDuration,
		c.SessionsStarted,
		c.SessionsCompleted,
		c.AnswersSubmitted,
		c.SessionScores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBOperation records one repository call
func (c *Collector) RecordDBOperation(operation string, duration time.Duration, err error) {
	c.DBOperations.WithLabelValues(operation, statusLabel(err)).Inc()
	c.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheHit counts a hit for resource
func (c *Collector) RecordCacheHit(resource string) {
	c.CacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss counts a miss for resource
func (c *Collector) RecordCacheMiss(resource string) {
	c.CacheMisses.WithLabelValues(resource).Inc()
}

// RecordCacheError counts a failed or skipped cache operation
func (c *Collector) RecordCacheError(operation string) {
	c.CacheErrors.WithLabelValues(operation).Inc()
}

// ObserveQuery records one query bus dispatch
func (c *Collector) ObserveQuery(queryType string, duration time.Duration, err error) {
	c.QueryRequests.WithLabelValues(queryType, statusLabel(err)).Inc()
	c.QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// RecordSessionStarted counts a started session
func (c *Collector) RecordSessionStarted() {
	c.SessionsStarted.Inc()
}

// RecordSessionCompleted counts a completed session and its score
func (c *Collector) RecordSessionCompleted(score int) {
	c.SessionsCompleted.Inc()
	c.SessionScores.Observe(float64(score))
}

// RecordAnswer counts a submitted answer
func (c *Collector) RecordAnswer(correct bool) {
	label := "false"
	if correct {
		label = "true"
	}
	c.AnswersSubmitted.WithLabelValues(label).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
