package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laporpak/report-service/internal/core/domain"
)

var monas = domain.Coordinates{Lat: -6.175392, Lng: 106.827153}

func TestGeoLocator_PickLocation_ResolvesAddress(t *testing.T) {
	drafts := newStubDrafts()
	geo := &stubGeocoder{address: "Gambir, Jakarta Pusat"}
	svc := NewGeoLocator(newGate(), geo, drafts, discardLogger)

	loc, err := svc.PickLocation(asUser("u1", "Budi"), monas, domain.SourceDevice)

	require.NoError(t, err)
	assert.Equal(t, "Gambir, Jakarta Pusat", loc.Address)
	assert.True(t, loc.AddressResolved)
	assert.Equal(t, domain.SourceDevice, loc.Source)
	assert.Equal(t, monas, drafts.locations["u1"].Coordinates)
}

func TestGeoLocator_PickLocation_GeocodeFailureStillPicks(t *testing.T) {
	drafts := newStubDrafts()
	geo := &stubGeocoder{err: errors.New("status 503")}
	svc := NewGeoLocator(newGate(), geo, drafts, discardLogger)

	loc, err := svc.PickLocation(asUser("u1", "Budi"), monas, domain.SourceManual)

	require.NoError(t, err)
	assert.Equal(t, domain.AddressUnavailable, loc.Address)
	assert.False(t, loc.AddressResolved)
	assert.Equal(t, monas, loc.Coordinates)
	assert.Contains(t, drafts.locations, "u1")
}

func TestGeoLocator_PickLocation_LatestWins(t *testing.T) {
	drafts := newStubDrafts()
	svc := NewGeoLocator(newGate(), &stubGeocoder{address: "X"}, drafts, discardLogger)
	ctx := asUser("u1", "Budi")

	_, err := svc.PickLocation(ctx, monas, domain.SourceDevice)
	require.NoError(t, err)
	second := domain.Coordinates{Lat: -7.250445, Lng: 112.768845}
	_, err = svc.PickLocation(ctx, second, domain.SourceManual)
	require.NoError(t, err)

	assert.Equal(t, second, drafts.locations["u1"].Coordinates)

	// A stale pick that finishes late is discarded.
	stale := domain.PickedLocation{Coordinates: monas, Seq: 1}
	stored, err := drafts.SaveLocation(context.Background(), "u1", stale)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.Equal(t, second, drafts.locations["u1"].Coordinates)
}

func TestGeoLocator_PickLocation_Validation(t *testing.T) {
	drafts := newStubDrafts()
	geo := &stubGeocoder{}
	svc := NewGeoLocator(newGate(), geo, drafts, discardLogger)

	_, err := svc.PickLocation(asUser("u1", "Budi"), domain.Coordinates{Lat: 91, Lng: 0}, "satellite")

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"coordinates", "source"}, ve.Fields)
	assert.Zero(t, geo.calls)
	assert.Empty(t, drafts.locations)
}

func TestGeoLocator_RequiresUser(t *testing.T) {
	geo := &stubGeocoder{address: "X"}
	svc := NewGeoLocator(newGate(), geo, newStubDrafts(), discardLogger)

	_, err := svc.PickLocation(context.Background(), monas, domain.SourceDevice)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = svc.ReverseGeocode(context.Background(), monas)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, _, err = svc.Draft(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Zero(t, geo.calls)
}

func TestGeoLocator_FormRoundTripAndDiscard(t *testing.T) {
	drafts := newStubDrafts()
	svc := NewGeoLocator(newGate(), nil, drafts, discardLogger)
	ctx := asUser("u1", "Budi")

	saved, err := svc.SaveForm(ctx, domain.DraftForm{Category: "fasilitas", Description: "Lampu jalan mati"})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	_, err = svc.PickLocation(ctx, monas, domain.SourceDevice)
	require.NoError(t, err)

	form, loc, err := svc.Draft(ctx)
	require.NoError(t, err)
	require.NotNil(t, form)
	require.NotNil(t, loc)
	assert.Equal(t, "Lampu jalan mati", form.Description)
	assert.Equal(t, domain.AddressUnavailable, loc.Address, "no geocoder configured")

	require.NoError(t, svc.Discard(ctx))
	form, loc, err = svc.Draft(ctx)
	require.NoError(t, err)
	assert.Nil(t, form)
	assert.Nil(t, loc)
}

func TestGeoLocator_ReverseGeocodeDoesNotTouchDraft(t *testing.T) {
	drafts := newStubDrafts()
	svc := NewGeoLocator(newGate(), &stubGeocoder{address: "Surabaya"}, drafts, discardLogger)

	loc, err := svc.ReverseGeocode(asUser("u1", "Budi"), monas)

	require.NoError(t, err)
	assert.Equal(t, "Surabaya", loc.Address)
	assert.Empty(t, drafts.locations)
}
