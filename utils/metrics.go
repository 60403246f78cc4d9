package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by area and reason",
		},
		[]string{"area", "reason"},
	)

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "reason"},
	)

	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_lockouts_total",
			Help: "Number of accounts transitioned into the locked state",
		},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_call_duration_seconds",
			Help:    "Duration of RouterOS API calls",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"command", "outcome"},
	)

	PresenceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_identity_lookups_total",
			Help: "Per-username identity lookups made while building presence views",
		},
		[]string{"outcome"}, // resolved, unknown, timeout, error
	)

	TokenUsage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_usage_total",
			Help: "Access token lifecycle events",
		},
		[]string{"type", "event"},
	)
)

// TrackDBOperation returns a timer; callers defer ObserveDuration.
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

func TrackError(area, reason string) {
	ErrorsTotal.WithLabelValues(area, reason).Inc()
}

func TrackAuthAttempt(status, reason string) {
	AuthAttempts.WithLabelValues(status, reason).Inc()
}

func TrackLockout() {
	LockoutsTotal.Inc()
}

func TrackRemoteCall(command, outcome string, seconds float64) {
	RemoteCallDuration.WithLabelValues(command, outcome).Observe(seconds)
}

func TrackPresenceLookup(outcome string) {
	PresenceLookups.WithLabelValues(outcome).Inc()
}
