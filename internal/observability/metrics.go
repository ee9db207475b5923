package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedQueriesTotal counts feed queries by feed kind.
	FeedQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_feed_queries_total",
		Help: "Total number of feed queries by kind",
	}, []string{"feed"})

	// FeedQueryLatency records feed composition latency by feed kind.
	FeedQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_feed_query_latency_seconds",
		Help:    "Feed query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"feed"})

	// CacheHits counts cache hits by key.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"key"})

	// CacheMisses counts cache misses by key.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"key"})

	// CacheErrors counts cache backend errors by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_cache_errors_total",
		Help: "Total number of cache backend errors by operation",
	}, []string{"operation"})

	// FollowEdgesTotal counts follow graph mutations by action.
	FollowEdgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quill_follow_edges_total",
		Help: "Total number of follow graph changes by action",
	}, []string{"action"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quill_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackFeed counts a feed query and returns a function that records its latency.
func TrackFeed(feed string) func() {
	FeedQueriesTotal.WithLabelValues(feed).Inc()
	start := time.Now()
	return func() {
		FeedQueryLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
