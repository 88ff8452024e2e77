package handler

import (
	"context"
	"io"
	"time"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

var testTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (*ports.Session, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.Session, error)
	meFn       func(ctx context.Context) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*ports.Session, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context) (*domain.Identity, error) {
	return s.meFn(ctx)
}

type stubSubmitter struct {
	got ports.SubmitReportInput
	// photo is read inside Submit, while the multipart form is still open.
	photo []byte
	res   *ports.SubmitReportResult
	err   error
}

func (s *stubSubmitter) Submit(_ context.Context, in ports.SubmitReportInput) (*ports.SubmitReportResult, error) {
	s.got = in
	if in.Photo.Present() {
		rc, err := in.Photo.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		if s.photo, err = io.ReadAll(rc); err != nil {
			return nil, err
		}
	}
	return s.res, s.err
}

type stubReader struct {
	mine     []domain.Report
	report   *domain.Report
	views    []domain.ReportView
	total    int64
	counts   domain.StatusCounts
	err      error
	gotID    string
	gotQuery ports.ListReportsFilter
}

func (s *stubReader) ListMine(context.Context) ([]domain.Report, error) {
	return s.mine, s.err
}

func (s *stubReader) Get(_ context.Context, id string) (*domain.Report, error) {
	s.gotID = id
	return s.report, s.err
}

func (s *stubReader) ListAll(_ context.Context, f ports.ListReportsFilter) ([]domain.ReportView, int64, error) {
	s.gotQuery = f
	return s.views, s.total, s.err
}

func (s *stubReader) Stats(context.Context) (domain.StatusCounts, error) {
	return s.counts, s.err
}

type stubTriager struct {
	gotID     string
	gotStatus string
	report    *domain.Report
	err       error
	removed   []string
}

func (s *stubTriager) ChangeStatus(_ context.Context, id, status string) (*domain.Report, error) {
	s.gotID, s.gotStatus = id, status
	return s.report, s.err
}

func (s *stubTriager) RemoveReport(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	s.removed = append(s.removed, id)
	return nil
}

type stubDrafts struct {
	form      *domain.DraftForm
	location  *domain.PickedLocation
	err       error
	gotCoords domain.Coordinates
	gotSource domain.LocationSource
	discarded int
}

func (s *stubDrafts) Draft(context.Context) (*domain.DraftForm, *domain.PickedLocation, error) {
	return s.form, s.location, s.err
}

func (s *stubDrafts) SaveForm(_ context.Context, form domain.DraftForm) (*domain.DraftForm, error) {
	if s.err != nil {
		return nil, s.err
	}
	form.UpdatedAt = testTime
	s.form = &form
	return &form, nil
}

func (s *stubDrafts) PickLocation(_ context.Context, c domain.Coordinates, source domain.LocationSource) (*domain.PickedLocation, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotCoords, s.gotSource = c, source
	return &domain.PickedLocation{Coordinates: c, Address: "Jl. Medan Merdeka", AddressResolved: true, Source: source, Seq: 1, PickedAt: testTime}, nil
}

func (s *stubDrafts) Discard(context.Context) error {
	if s.err != nil {
		return s.err
	}
	s.discarded++
	return nil
}

func (s *stubDrafts) ReverseGeocode(_ context.Context, c domain.Coordinates) (*domain.PickedLocation, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotCoords = c
	return &domain.PickedLocation{Coordinates: c, Address: domain.AddressUnavailable, Source: domain.SourceManual, PickedAt: testTime}, nil
}
