// Package metrics defines and registers all custom Prometheus metrics for the
// clients service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry through promauto
// at package initialisation; /metrics exposes them next to the HTTP request
// metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clients"

// ── Operation metrics ─────────────────────────────────────────────────────────

// OperationsTotal counts client service operations by transport and outcome.
// Labels:
//   - transport: "http" or "grpc"
//   - operation: e.g. "create", "list", "get", "update", "update_password", "delete", "verify"
//   - outcome: "ok", "invalid_input", "not_found", "conflict", "unauthenticated", "error"
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of client operations, by transport, operation and outcome.",
	},
	[]string{"transport", "operation", "outcome"},
)

// OperationDuration measures end-to-end handling time of one operation.
var OperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of client operations, by transport and operation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"transport", "operation"},
)

// ── Credential metrics ────────────────────────────────────────────────────────

// CredentialHashDuration measures bcrypt hashing time.
var CredentialHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "credential_hash_duration_seconds",
		Help:      "Time spent computing credential verifiers.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheRequestsTotal counts read-through cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of client cache lookups, labelled by result (hit/miss/error).",
	},
	[]string{"result"},
)
