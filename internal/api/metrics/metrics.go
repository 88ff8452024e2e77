// Package metrics defines and registers the custom Prometheus metrics of the
// Lapor Pak report service. It is the single source of truth for metric names,
// labels and help strings.
//
// All metrics register with the default Prometheus registry on import and are
// served by the /metrics endpoint next to the echoprometheus request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "laporpak"

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportsSubmittedTotal counts reports created through the submission pipeline.
// Label:
//   - photo: "true" when a photo was uploaded with the report, otherwise "false"
var ReportsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_submitted_total",
		Help:      "Total number of reports submitted, by photo presence.",
	},
	[]string{"photo"},
)

// SubmissionFailuresTotal counts submissions rejected or aborted.
// Label:
//   - reason: "validation", "media", "upload", "persistence", "unauthenticated",
//     "in_flight" or "other"
var SubmissionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_failures_total",
		Help:      "Total number of failed report submissions, by failing step.",
	},
	[]string{"reason"},
)

// SubmissionReplaysTotal counts submissions answered from an idempotency key.
var SubmissionReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_replays_total",
		Help:      "Total number of submissions answered with an existing report.",
	},
)

// StatusChangesTotal counts admin status transitions.
// Label:
//   - status: the new status ("pending", "proses", "selesai")
var StatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Total number of report status changes, by target status.",
	},
	[]string{"status"},
)

// ReportsDeletedTotal counts reports removed by admins.
var ReportsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_deleted_total",
		Help:      "Total number of reports deleted.",
	},
)

// PhotoUploadBytes observes the size of uploaded request photos.
var PhotoUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "photo_request_bytes",
		Help:      "Size in bytes of photos attached to report submissions.",
		Buckets:   prometheus.ExponentialBuckets(32*1024, 2, 8), // 32 KiB … 4 MiB
	},
)

// ── Draft metrics ─────────────────────────────────────────────────────────────

// LocationPicksTotal counts picked draft locations.
// Labels:
//   - source: "device" or "manual"
//   - resolved: "true" when reverse geocoding produced an address
var LocationPicksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_picks_total",
		Help:      "Total number of picked draft locations, by source and geocoding result.",
	},
	[]string{"source", "resolved"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts report change events handed to the broker.
// Labels:
//   - kind: "report.created", "report.status_changed" or "report.deleted"
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of report change events published, by kind and result.",
	},
	[]string{"kind", "result"},
)

// EventsDroppedTotal counts change events dropped because a worker queue was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of report change events dropped on a full queue.",
	},
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
