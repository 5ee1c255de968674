// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ──────────────────────────────────────────────────────────

// LoginAttemptsTotal counts session resolution attempts.
// Labels:
//   - method: "web2" or "web3"
//   - mode:   "demo" or "live"
//   - result: "success" or the failure reason (e.g. "wrong_password", "role_mismatch")
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by method, mode and result.",
	},
	[]string{"method", "mode", "result"},
)

// RegistrationsTotal counts directory registrations.
// Labels:
//   - role:   the registered role
//   - source: "signup" or "auto"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role and source.",
	},
	[]string{"role", "source"},
)

// ViewResolutionsTotal counts view router decisions.
// Labels:
//   - outcome: "rendered", "fallback", "denied", "blocked" or "public"
var ViewResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "view_resolutions_total",
		Help:      "Total number of view resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// ActiveSessions tracks the number of portals held by the session registry.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of live sessions held in memory.",
	},
)

// ── Moderation metrics ───────────────────────────────────────────────────────

// ModerationTransitionsTotal counts case state changes.
// Label:
//   - status: the status the case moved to (e.g. "appeal_pending")
var ModerationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_transitions_total",
		Help:      "Total number of moderation case transitions, by new status.",
	},
	[]string{"status"},
)

// ── Infrastructure metrics ───────────────────────────────────────────────────

// NotificationQueueDepth tracks the number of notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsDroppedTotal counts notifications discarded because a worker channel was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped on a full worker channel.",
	},
)

// DirectoryStoreDuration measures directory persistence calls.
// Labels:
//   - backend: "file", "mongo", "redis" or "postgres"
//   - op:      "load" or "save"
//   - result:  "ok" or "error"
var DirectoryStoreDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "directory_store_duration_seconds",
		Help:      "Duration of directory store load and save calls.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"backend", "op", "result"},
)
