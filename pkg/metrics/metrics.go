// Package metrics defines the Prometheus metric collectors used by the search
// server and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result types recorded by SearchQueriesTotal.
const (
	ResultHit        = "hit"
	ResultZeroResult = "zero_result"
	ResultError      = "error"
)

// Metrics holds all Prometheus collectors for the server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
	HTTPRequestsInFlight    prometheus.Gauge
	SearchQueriesTotal      *prometheus.CounterVec
	SearchLatency           *prometheus.HistogramVec
	SearchResultsCount      prometheus.Histogram
	BatchQueriesTotal       prometheus.Counter
	CacheHitsTotal          prometheus.Counter
	CacheMissesTotal        prometheus.Counter
	DocsIndexedTotal        prometheus.Counter
	DocsRemovedTotal        prometheus.Counter
	IndexDocuments          prometheus.Gauge
	IndexWords              prometheus.Gauge
	TrackerNoResultRequests prometheus.Gauge
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all collectors and registers them with reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "FindTopDocuments latency in seconds by execution strategy.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"strategy"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
			},
		),
		BatchQueriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "batch_queries_total",
				Help: "Total queries executed through the batch processor.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_removed_total",
				Help: "Total documents removed from the index.",
			},
		),
		IndexDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_documents",
				Help: "Number of live documents in the index.",
			},
		),
		IndexWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_words",
				Help: "Number of distinct words in the inverted index.",
			},
		),
		TrackerNoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_no_result_requests",
				Help: "Empty-result requests currently held in the trailing window.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.BatchQueriesTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.DocsRemovedTotal,
		m.IndexDocuments,
		m.IndexWords,
		m.TrackerNoResultRequests,
	)

	return m
}

// ObserveSearch records one FindTopDocuments call.
func (m *Metrics) ObserveSearch(strategy string, elapsed time.Duration, results int, err error) {
	if m == nil {
		return
	}
	m.SearchLatency.WithLabelValues(strategy).Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues(ResultError).Inc()
		return
	case results == 0:
		m.SearchQueriesTotal.WithLabelValues(ResultZeroResult).Inc()
	default:
		m.SearchQueriesTotal.WithLabelValues(ResultHit).Inc()
	}
	m.SearchResultsCount.Observe(float64(results))
}

// ObserveIndex records the index size after a mutation.
func (m *Metrics) ObserveIndex(documents, words int) {
	if m == nil {
		return
	}
	m.IndexDocuments.Set(float64(documents))
	m.IndexWords.Set(float64(words))
}

func (m *Metrics) DocumentIndexed() {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
}

func (m *Metrics) DocumentsRemoved(n int) {
	if m == nil {
		return
	}
	m.DocsRemovedTotal.Add(float64(n))
}

func (m *Metrics) BatchQueries(n int) {
	if m == nil {
		return
	}
	m.BatchQueriesTotal.Add(float64(n))
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
	} else {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) SetNoResultRequests(n int) {
	if m == nil {
		return
	}
	m.TrackerNoResultRequests.Set(float64(n))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
