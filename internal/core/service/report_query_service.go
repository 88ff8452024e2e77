package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const (
	maxListLimit = 100
	// maxListPage keeps the skip offset far from integer overflow.
	maxListPage = 1_000_000
)

// ReportQueryService serves the per-user history and the admin reads.
type ReportQueryService struct {
	gate    *AuthGate
	reports ports.ReportRepository
	stats   ports.StatsCache
	logger  zerolog.Logger
}

// NewReportQueryService wires the reader; stats may be nil to disable caching.
func NewReportQueryService(gate *AuthGate, reports ports.ReportRepository, stats ports.StatsCache, logger zerolog.Logger) *ReportQueryService {
	return &ReportQueryService{gate: gate, reports: reports, stats: stats, logger: logger}
}

// ListMine returns the caller's reports, newest first.
func (s *ReportQueryService) ListMine(ctx context.Context) ([]domain.Report, error) {
	ident, err := s.gate.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.ListByUser(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	return reports, nil
}

// Get returns one report to its owner or to an admin.
func (s *ReportQueryService) Get(ctx context.Context, id string) (*domain.Report, error) {
	ident, err := s.gate.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrReportNotFound
	}
	r, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != ident.ID && !ident.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

// ListAll returns every report with its author name. Admin only.
func (s *ReportQueryService) ListAll(ctx context.Context, filter ports.ListReportsFilter) ([]domain.ReportView, int64, error) {
	if _, err := s.gate.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, &domain.ValidationError{Fields: []string{"status"}}
	}
	if filter.Page > maxListPage {
		return nil, 0, &domain.ValidationError{Fields: []string{"page"}}
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Limit > 0 && filter.Page < 1 {
		filter.Page = 1
	}
	views, total, err := s.reports.ListAll(ctx, filter, true)
	if err != nil {
		return nil, 0, err
	}
	if views == nil {
		views = []domain.ReportView{}
	}
	return views, total, nil
}

// Stats returns report counts per status. Admin only. A cached value is used
// when present; the cache is invalidated on every mutation.
func (s *ReportQueryService) Stats(ctx context.Context) (domain.StatusCounts, error) {
	if _, err := s.gate.RequireAdmin(ctx); err != nil {
		return domain.StatusCounts{}, err
	}

	if s.stats != nil {
		cached, err := s.stats.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stats cache read failed")
		} else if cached != nil {
			return *cached, nil
		}
	}

	counts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return domain.StatusCounts{}, err
	}

	if s.stats != nil {
		if err := s.stats.Set(ctx, counts); err != nil {
			s.logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return counts, nil
}
