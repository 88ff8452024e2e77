package ports

import (
	"context"

	"github.com/laporpak/report-service/internal/core/domain"
)

// ReverseGeocoder turns a coordinate into a human-readable address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, c domain.Coordinates) (string, error)
}

// DraftStore keeps one pending report form and one picked location per user.
// Each Save replaces the previous value as a whole.
type DraftStore interface {
	SaveForm(ctx context.Context, userID string, form domain.DraftForm) error
	LoadForm(ctx context.Context, userID string) (*domain.DraftForm, error)
	// SaveLocation stores loc unless a location with a higher Seq is already stored.
	// It reports whether loc became current.
	SaveLocation(ctx context.Context, userID string, loc domain.PickedLocation) (bool, error)
	LoadLocation(ctx context.Context, userID string) (*domain.PickedLocation, error)
	NextSeq(ctx context.Context, userID string) (int64, error)
	Clear(ctx context.Context, userID string) error
}
