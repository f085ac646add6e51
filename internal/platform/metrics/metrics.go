// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus collectors exported by the API server.

Collectors are registered once on the default registry through promauto and
scraped from GET /metrics. Domain packages record through the small helper
functions below so that label values stay consistent across call sites.
*/
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bookshelf"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

var (
	// HTTPRequests counts finished requests by method, chi route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests processed, partitioned by method, route and status code.",
	}, []string{"method", "route", "status"})

	// TranscodeDuration observes how long a cover takes to reach the canonical encoding.
	TranscodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transcode_duration_seconds",
		Help:      "Time spent transcoding uploaded covers.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	// AssetOperations counts put/delete/exists calls against the asset backend.
	AssetOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_operations_total",
		Help:      "Asset store operations, partitioned by operation and outcome.",
	}, []string{"op", "outcome"})

	// AssetCleanupFailures counts best-effort cleanups that could not complete.
	AssetCleanupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asset_cleanup_failures_total",
		Help:      "Failed best-effort removals of staged or orphaned assets.",
	}, []string{"reason"})

	// CircuitBreakerState tracks each breaker: 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Current circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	// Ratings counts rating submissions by outcome.
	Ratings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_total",
		Help:      "Rating submissions, partitioned by outcome.",
	}, []string{"outcome"})
)

// Cleanup failure reasons.
const (
	CleanupStaging     = "staging"
	CleanupReplaced    = "replaced"
	CleanupDeleted     = "deleted"
	CleanupCompensated = "compensated"
)

// ObserveRequest records a finished HTTP request.
func ObserveRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveTranscode records the duration of a transcode attempt started at start.
func ObserveTranscode(start time.Time, err error) {
	TranscodeDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
}

// ObserveAsset records the result of one asset store operation.
func ObserveAsset(op string, err error) {
	AssetOperations.WithLabelValues(op, outcome(err)).Inc()
}

// CleanupFailed records a cleanup that left an asset or staging file behind.
func CleanupFailed(reason string) {
	AssetCleanupFailures.WithLabelValues(reason).Inc()
}

// ObserveRating records a rating submission. Rejected submissions are those
// refused by validation or the one-rating-per-user rule.
func ObserveRating(rejected bool, err error) {
	switch {
	case rejected:
		Ratings.WithLabelValues(OutcomeRejected).Inc()
	default:
		Ratings.WithLabelValues(outcome(err)).Inc()
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
