// Package metrics defines and registers all custom Prometheus metrics for the
// Unity Nodes API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unitynodes"

// ── License metrics ───────────────────────────────────────────────────────────

// LicenseAllocationsTotal counts allocation attempts by outcome.
// Labels:
//   - node_type: requested category, or "any"
//   - result: "success", "already_allocated", "no_inventory", "contention", "invalid", "error"
var LicenseAllocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_allocations_total",
		Help:      "Total number of license allocation attempts, by outcome.",
	},
	[]string{"node_type", "result"},
)

// LicenseClaimConflictsTotal counts conditional claim writes lost to a
// concurrent request. Each conflict triggers a retry of selection.
var LicenseClaimConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_claim_conflicts_total",
		Help:      "Total number of lost conditional claim writes.",
	},
	[]string{"node_type"},
)

// LicenseAllocationDuration measures allocation latency end-to-end.
var LicenseAllocationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "license_allocation_duration_seconds",
		Help:      "Duration of license allocation from pre-check to claim.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// LicensesProvisionedTotal counts licenses added to the inventory.
var LicensesProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "licenses_provisioned_total",
		Help:      "Total number of licenses provisioned, by node type.",
	},
	[]string{"node_type"},
)

// LicensesActivatedTotal counts generated licenses moved to used.
var LicensesActivatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "licenses_activated_total",
		Help:      "Total number of licenses activated, by node type.",
	},
	[]string{"node_type"},
)

// ── Reward metrics ────────────────────────────────────────────────────────────

// RewardsRecordedTotal counts reward records created.
// Label:
//   - period: "daily", "weekly" or "monthly"
var RewardsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rewards_recorded_total",
		Help:      "Total number of reward records created, by period.",
	},
	[]string{"period"},
)

// RewardsDedupTotal counts idempotency decisions on reward writes.
// Label:
//   - result: "hit" (replayed) or "miss" (new reward)
var RewardsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rewards_dedup_total",
		Help:      "Total number of reward idempotency checks, labelled by result (new/replayed).",
	},
	[]string{"result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts domain events handed to the publisher.
// Labels:
//   - type: event type (e.g. "license.generated")
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of domain events published, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsDroppedTotal counts events discarded because a worker buffer was full
// or the dispatcher was shut down.
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of domain events dropped before publishing.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
