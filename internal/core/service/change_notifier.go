package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// EventQueue accepts change events for asynchronous delivery.
type EventQueue interface {
	Enqueue(change domain.ReportChange)
}

// ChangeNotifier invalidates cached aggregates and forwards the change to
// downstream listeners (admin and user dashboards).
type ChangeNotifier struct {
	stats  ports.StatsCache
	queue  EventQueue
	logger zerolog.Logger
}

// NewChangeNotifier accepts nil for either sink.
func NewChangeNotifier(stats ports.StatsCache, queue EventQueue, logger zerolog.Logger) *ChangeNotifier {
	return &ChangeNotifier{stats: stats, queue: queue, logger: logger}
}

func (n *ChangeNotifier) ReportsChanged(ctx context.Context, change domain.ReportChange) {
	if n.stats != nil {
		if err := n.stats.Invalidate(ctx); err != nil {
			n.logger.Warn().Err(err).Str("report_id", change.ReportID).Msg("stats cache invalidation failed")
		}
	}
	if n.queue != nil {
		n.queue.Enqueue(change)
	}
}
