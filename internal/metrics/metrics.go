// Package metrics defines and registers all custom Prometheus metrics for
// the Workcity client core. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default registry at package init via promauto;
// expose them with promhttp when the core runs as a long-lived process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "workcity"

// ── HTTP client metrics ──────────────────────────────────────────────────────

// APIRequestsTotal counts outgoing REST calls.
// Labels:
//   - method: HTTP method ("GET", "POST", ...)
//   - resource: first path segment under /api ("clients", "projects", "auth", "health")
//   - status: numeric HTTP status, or "error" for transport failures
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of outgoing API requests, labelled by method, resource, and status.",
	},
	[]string{"method", "resource", "status"},
)

// APIRequestDuration observes outgoing request latency in seconds.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Latency of outgoing API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "resource"},
)

// ── Store metrics ────────────────────────────────────────────────────────────

// StoreRefreshesTotal counts full list refetches per entity store.
// Labels:
//   - store: "clients" or "projects"
//   - trigger: "mount", "filters", "stale", or "manual"
var StoreRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_refreshes_total",
		Help:      "Total number of entity store refreshes, labelled by store and trigger.",
	},
	[]string{"store", "trigger"},
)

// StoreMutationsTotal counts create/update/delete calls per entity store.
// Labels:
//   - store: "clients" or "projects"
//   - op: "create", "update", or "delete"
//   - result: "ok" or "error"
var StoreMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_mutations_total",
		Help:      "Total number of entity store mutations, labelled by store, operation, and result.",
	},
	[]string{"store", "op", "result"},
)

// ── Auth metrics ─────────────────────────────────────────────────────────────

// SessionTeardownsTotal counts forced session clears.
// Label:
//   - reason: "unauthorized" (server 401), "logout", or "invalid" (whoami failure)
var SessionTeardownsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_teardowns_total",
		Help:      "Total number of session clears, labelled by reason.",
	},
	[]string{"reason"},
)

// DemoLoginsTotal counts logins satisfied by the local demo bypass.
var DemoLoginsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "demo_logins_total",
		Help:      "Total number of logins satisfied locally by the demo bypass.",
	},
)
