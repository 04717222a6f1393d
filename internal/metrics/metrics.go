// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds prometheus.Histogram
	httpRetriesTotal           prometheus.Counter
	parseTotal                 *prometheus.CounterVec
	searchPagesTotal           prometheus.Counter

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graver_http_requests_total",
				Help: "Total number of HTTP requests sent, labeled by response code.",
			},
			[]string{"code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "graver_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		httpRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "graver_http_retries_total",
				Help: "Total number of retries after a recoverable status code.",
			},
		)

		parseTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "graver_parse_total",
				Help: "Total number of page parses, labeled by page kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		searchPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "graver_search_pages_total",
				Help: "Total number of search result pages scraped.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records one completed request.
func ObserveHTTPRequest(code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.Observe(duration.Seconds())
}

func ObserveRetry() {
	Init()
	httpRetriesTotal.Inc()
}

// ObserveParse counts a parse of kind ("memorial", "cemetery") ending in outcome.
func ObserveParse(kind, outcome string) {
	Init()
	parseTotal.WithLabelValues(kind, outcome).Inc()
}

func ObserveSearchPage() {
	Init()
	searchPagesTotal.Inc()
}
