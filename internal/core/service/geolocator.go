package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// GeoLocator keeps the caller's report draft: the entered text fields and a
// single current picked location. Picking a coordinate always succeeds; when
// reverse geocoding fails the address is marked unavailable.
type GeoLocator struct {
	gate     *AuthGate
	geocoder ports.ReverseGeocoder
	drafts   ports.DraftStore
	now      func() time.Time
	logger   zerolog.Logger
}

func NewGeoLocator(gate *AuthGate, geocoder ports.ReverseGeocoder, drafts ports.DraftStore, logger zerolog.Logger) *GeoLocator {
	return &GeoLocator{
		gate:     gate,
		geocoder: geocoder,
		drafts:   drafts,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// Resolve reverse-geocodes c without touching any draft.
func (l *GeoLocator) Resolve(ctx context.Context, c domain.Coordinates, source domain.LocationSource) domain.PickedLocation {
	loc := domain.PickedLocation{
		Coordinates: c,
		Address:     domain.AddressUnavailable,
		Source:      source,
		PickedAt:    l.now(),
	}
	if l.geocoder == nil {
		return loc
	}

	address, err := l.geocoder.Reverse(ctx, c)
	if err != nil {
		l.logger.Warn().Err(err).Str("coordinates", c.String()).Msg("reverse geocoding failed")
		return loc
	}
	if address = strings.TrimSpace(address); address != "" {
		loc.Address = address
		loc.AddressResolved = true
	}
	return loc
}

// ReverseGeocode resolves a coordinate for an authenticated caller.
func (l *GeoLocator) ReverseGeocode(ctx context.Context, c domain.Coordinates) (*domain.PickedLocation, error) {
	if _, err := l.gate.RequireUser(ctx); err != nil {
		return nil, err
	}
	if !c.Valid() {
		return nil, &domain.ValidationError{Fields: []string{"coordinates"}}
	}
	loc := l.Resolve(ctx, c, domain.SourceManual)
	return &loc, nil
}

// PickLocation replaces the caller's current location. The sequence number is
// taken before geocoding, so a slow older pick never overwrites a newer one; in
// that case the newer location is returned.
func (l *GeoLocator) PickLocation(ctx context.Context, c domain.Coordinates, source domain.LocationSource) (*domain.PickedLocation, error) {
	ident, err := l.gate.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	var invalid []string
	if !c.Valid() {
		invalid = append(invalid, "coordinates")
	}
	if !source.Valid() {
		invalid = append(invalid, "source")
	}
	if len(invalid) > 0 {
		return nil, &domain.ValidationError{Fields: invalid}
	}

	seq, err := l.drafts.NextSeq(ctx, ident.ID)
	if err != nil {
		return nil, err
	}

	loc := l.Resolve(ctx, c, source)
	loc.Seq = seq

	stored, err := l.drafts.SaveLocation(ctx, ident.ID, loc)
	if err != nil {
		return nil, err
	}
	if !stored {
		current, err := l.drafts.LoadLocation(ctx, ident.ID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			return current, nil
		}
	}
	return &loc, nil
}

// Draft returns the caller's saved form and picked location; either may be nil.
func (l *GeoLocator) Draft(ctx context.Context) (*domain.DraftForm, *domain.PickedLocation, error) {
	ident, err := l.gate.RequireUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	form, err := l.drafts.LoadForm(ctx, ident.ID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := l.drafts.LoadLocation(ctx, ident.ID)
	if err != nil {
		return nil, nil, err
	}
	return form, loc, nil
}

// SaveForm stores the text fields as entered; they are not validated here.
func (l *GeoLocator) SaveForm(ctx context.Context, form domain.DraftForm) (*domain.DraftForm, error) {
	ident, err := l.gate.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	form.UpdatedAt = l.now()
	if err := l.drafts.SaveForm(ctx, ident.ID, form); err != nil {
		return nil, err
	}
	return &form, nil
}

// Discard clears the form and the picked location.
func (l *GeoLocator) Discard(ctx context.Context) error {
	ident, err := l.gate.RequireUser(ctx)
	if err != nil {
		return err
	}
	return l.drafts.Clear(ctx, ident.ID)
}
