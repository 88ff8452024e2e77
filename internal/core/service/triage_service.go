package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// TriageService holds the admin-only report mutations.
type TriageService struct {
	gate     *AuthGate
	reports  ports.ReportRepository
	notifier ports.ChangeNotifier
	logger   zerolog.Logger
}

func NewTriageService(gate *AuthGate, reports ports.ReportRepository, notifier ports.ChangeNotifier, logger zerolog.Logger) *TriageService {
	return &TriageService{gate: gate, reports: reports, notifier: notifier, logger: logger}
}

// ChangeStatus sets any of the three statuses on a report. The last write wins.
func (s *TriageService) ChangeStatus(ctx context.Context, id, status string) (*domain.Report, error) {
	admin, err := s.gate.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrReportNotFound
	}

	updated, err := s.reports.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", id).
		Str("status", string(next)).
		Str("admin_id", admin.ID).
		Msg("report status changed")

	s.notify(ctx, domain.ChangeStatusChanged, updated)
	return updated, nil
}

// RemoveReport deletes a report. The uploaded photo, if any, is kept.
func (s *TriageService) RemoveReport(ctx context.Context, id string) error {
	admin, err := s.gate.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrReportNotFound
	}

	deleted, err := s.reports.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.logger.Info().Str("report_id", id).Str("admin_id", admin.ID).Msg("report deleted")
	s.notify(ctx, domain.ChangeDeleted, deleted)
	return nil
}

func (s *TriageService) notify(ctx context.Context, kind domain.ChangeKind, r *domain.Report) {
	if s.notifier == nil || r == nil {
		return
	}
	s.notifier.ReportsChanged(ctx, domain.ReportChange{
		Kind:     kind,
		ReportID: r.ID,
		OwnerID:  r.UserID,
		Status:   r.Status,
		At:       time.Now().UTC(),
	})
}
