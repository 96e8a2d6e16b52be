package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_permission_checks_total",
			Help: "Total number of company permission checks",
		},
		[]string{"permission", "result"},
	)

	// PermissionCache counts effective permission cache lookups (hit|miss|error).
	PermissionCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_permission_cache_total",
			Help: "Effective permission cache lookups",
		},
		[]string{"result"},
	)

	// Invitations counts invitation lifecycle transitions (issued|resent|accepted|revoked).
	Invitations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_invitations_total",
			Help: "Invitation lifecycle transitions",
		},
		[]string{"event"},
	)

	// CodeJoins counts join attempts via invitation code by outcome.
	CodeJoins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_code_joins_total",
			Help: "Invitation code join attempts",
		},
		[]string{"result"},
	)

	// Applications counts application lifecycle transitions.
	Applications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_applications_total",
			Help: "Application lifecycle transitions",
		},
		[]string{"event"},
	)

	// CleanupDeleted counts rows removed by maintenance jobs.
	CleanupDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_cleanup_deleted_total",
			Help: "Rows deleted by maintenance jobs",
		},
		[]string{"table"},
	)

	// SideEffectFailures counts best-effort side effects that failed (identity_sync|notification|email|assignment|outbox).
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_side_effect_failures_total",
			Help: "Best-effort side effects that failed without failing the request",
		},
		[]string{"effect"},
	)

	// OutboxPublished counts outbox relay publish attempts by result (sent|failed).
	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lynkskill_outbox_published_total",
			Help: "Outbox events relayed to the broker",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lynkskill_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
