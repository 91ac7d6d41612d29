package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	feedRequests  *prometheus.CounterVec
	retries       *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		feedRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_feed_requests_total",
				Help: "Upstream feed requests by form type and outcome",
			},
			[]string{"form", "status"},
		),
		retries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_feed_retries_total",
				Help: "Feed request retries, split by rate limiting",
			},
			[]string{"form", "rate_limited"},
		),
		parseFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_parse_failures_total",
				Help: "Filings or feed windows dropped by parsers",
			},
			[]string{"form"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_cache_lookups_total",
				Help: "Response cache lookups by kind and outcome",
			},
			[]string{"kind", "hit"},
		),
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edgarpull_ticker_resolutions_total",
				Help: "Ticker resolutions by winning strategy",
			},
			[]string{"strategy"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edgarpull_fetch_duration_seconds",
				Help:    "End to end duration of an orchestrated fetch",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"form"},
		),
	}
}

// RecordFeedRequest records one upstream request attempt outcome.
func (r *Recorder) RecordFeedRequest(form, status string) {
	r.feedRequests.WithLabelValues(form, status).Inc()
}

// RecordRetry records a retried request.
func (r *Recorder) RecordRetry(form string, rateLimited bool) {
	r.retries.WithLabelValues(form, strconv.FormatBool(rateLimited)).Inc()
}

// RecordParseFailure records a dropped filing or window.
func (r *Recorder) RecordParseFailure(form string) {
	r.parseFailures.WithLabelValues(form).Inc()
}

// RecordCacheHit records a response cache lookup.
func (r *Recorder) RecordCacheHit(kind string, hit bool) {
	r.cacheLookups.WithLabelValues(kind, strconv.FormatBool(hit)).Inc()
}

// RecordResolution records which strategy resolved a ticker.
func (r *Recorder) RecordResolution(strategy string) {
	r.resolutions.WithLabelValues(strategy).Inc()
}

// RecordFetchDuration records a completed orchestrated fetch.
func (r *Recorder) RecordFetchDuration(form string, seconds float64) {
	r.fetchDuration.WithLabelValues(form).Observe(seconds)
}
