package ports

import (
	"context"

	"github.com/laporpak/report-service/internal/core/domain"
)

// ListReportsFilter narrows the admin listing. Zero values mean "no filter";
// Limit 0 returns every matching report.
type ListReportsFilter struct {
	Status   domain.ReportStatus
	Category string
	Page     int // 1-based
	Limit    int
}

// ReportRepository is the persistence boundary for reports.
// Listings are newest-first by creation timestamp.
type ReportRepository interface {
	// Create assigns id, timestamps and the pending status on r and returns the id.
	Create(ctx context.Context, r *domain.Report) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Report, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Report, error)
	// ListAll returns reports matching filter; withAuthor resolves owner names,
	// substituting domain.AuthorNotFound for missing owners.
	ListAll(ctx context.Context, filter ListReportsFilter, withAuthor bool) ([]domain.ReportView, int64, error)
	CountByStatus(ctx context.Context) (domain.StatusCounts, error)
	// UpdateStatus returns the updated report or domain.ErrReportNotFound.
	UpdateStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error)
	// Delete returns the deleted report or domain.ErrReportNotFound.
	Delete(ctx context.Context, id string) (*domain.Report, error)
}

// StatsCache holds a short-lived copy of CountByStatus.
type StatsCache interface {
	Get(ctx context.Context) (*domain.StatusCounts, error)
	Set(ctx context.Context, counts domain.StatusCounts) error
	Invalidate(ctx context.Context) error
}
