// Buzzrank - Personalization and Feed Ranking for Buzz it
// Copyright 2026 Buzz it
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/buzzit/buzzrank

// Package metrics provides Prometheus instrumentation for Buzzrank:
// API endpoint latency and throughput, feed ranking and profile build
// duration, profile cache efficiency, and store query performance.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buzzrank_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzzrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "buzzrank_api_requests_in_flight",
			Help: "Current number of API requests being served",
		},
	)

	// Ranking Metrics
	FeedRankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buzzrank_feed_rank_duration_seconds",
			Help:    "Duration of feed ranking in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	FeedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buzzrank_feed_candidates",
			Help:    "Number of candidate buzzes considered per feed request",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
	)

	ProfileBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buzzrank_profile_build_duration_seconds",
			Help:    "Duration of preference profile builds in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	SuggestionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buzzrank_suggestions_returned",
			Help:    "Number of follow suggestions returned per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
	)

	// Profile Cache Metrics
	ProfileCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buzzrank_profile_cache_hits_total",
			Help: "Total number of profile cache hits",
		},
	)

	ProfileCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buzzrank_profile_cache_misses_total",
			Help: "Total number of profile cache misses",
		},
	)

	// Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buzzrank_store_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzzrank_store_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation"},
	)
)

// ObserveAPIRequest records a completed API request.
func ObserveAPIRequest(method, endpoint string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(method, endpoint, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
}

// ObserveStoreQuery records a store query, tracking errors separately.
func ObserveStoreQuery(operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation).Inc()
	}
}
