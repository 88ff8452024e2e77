package ports

import (
	"context"
	"time"

	"github.com/laporpak/report-service/internal/core/domain"
)

// SubmitReportInput carries a report form as entered by the user.
type SubmitReportInput struct {
	Category       string
	Description    string
	Location       string
	Coordinates    *domain.Coordinates
	Photo          *PhotoInput
	IdempotencyKey string
}

// SubmitReportResult is returned after a successful submission.
type SubmitReportResult struct {
	ReportID       string
	PhotoURL       string
	Status         domain.ReportStatus
	CreatedAt      time.Time
	AlreadyExisted bool
}

// ReportSubmitter runs the full submission pipeline for the current caller.
type ReportSubmitter interface {
	Submit(ctx context.Context, in SubmitReportInput) (*SubmitReportResult, error)
}

// ReportReader serves dashboard and admin reads.
type ReportReader interface {
	ListMine(ctx context.Context) ([]domain.Report, error)
	Get(ctx context.Context, id string) (*domain.Report, error)
	ListAll(ctx context.Context, filter ListReportsFilter) ([]domain.ReportView, int64, error)
	Stats(ctx context.Context) (domain.StatusCounts, error)
}

// ReportTriager holds the admin mutations.
type ReportTriager interface {
	ChangeStatus(ctx context.Context, id, status string) (*domain.Report, error)
	RemoveReport(ctx context.Context, id string) error
}

// DraftService manages the pending form and picked location of the caller.
type DraftService interface {
	Draft(ctx context.Context) (*domain.DraftForm, *domain.PickedLocation, error)
	SaveForm(ctx context.Context, form domain.DraftForm) (*domain.DraftForm, error)
	PickLocation(ctx context.Context, c domain.Coordinates, source domain.LocationSource) (*domain.PickedLocation, error)
	Discard(ctx context.Context) error
	ReverseGeocode(ctx context.Context, c domain.Coordinates) (*domain.PickedLocation, error)
}

// ChangeNotifier is told after every successful mutation of the report collection.
type ChangeNotifier interface {
	ReportsChanged(ctx context.Context, change domain.ReportChange)
}

// SubmissionDedup makes an idempotency key produce at most one report.
type SubmissionDedup interface {
	// Claim reserves key for a new submission. When the key is taken it
	// reports the id the key produced, or "" while that submission runs.
	Claim(ctx context.Context, userID, key string) (claimed bool, reportID string, err error)
	// Complete binds a claimed key to the report it produced.
	Complete(ctx context.Context, userID, key, reportID string) error
	// Release frees a claimed key whose submission failed.
	Release(ctx context.Context, userID, key string) error
}
