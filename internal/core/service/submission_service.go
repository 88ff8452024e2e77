package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const (
	defaultUploadFolder  = "laporpak_reports"
	defaultMaxPhotoBytes = 4718592 // 4.5 MB
)

// SubmissionConfig tunes the photo part of the pipeline.
type SubmissionConfig struct {
	UploadFolder  string
	MaxPhotoBytes int64
}

// SubmissionDeps groups the collaborators of SubmissionService.
// Drafts, Dedup and Notifier are optional.
type SubmissionDeps struct {
	Gate     *AuthGate
	Reports  ports.ReportRepository
	Media    ports.MediaPreparer
	Uploader ports.ObjectUploader
	Drafts   ports.DraftStore
	Dedup    ports.SubmissionDedup
	Notifier ports.ChangeNotifier
}

// SubmissionService coordinates a single report creation:
// identity → validation → media preparation → upload → persistence.
// Each step gates the next; nothing after a failed step runs.
type SubmissionService struct {
	deps   SubmissionDeps
	cfg    SubmissionConfig
	logger zerolog.Logger
}

func NewSubmissionService(deps SubmissionDeps, cfg SubmissionConfig, logger zerolog.Logger) *SubmissionService {
	if cfg.UploadFolder == "" {
		cfg.UploadFolder = defaultUploadFolder
	}
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = defaultMaxPhotoBytes
	}
	return &SubmissionService{deps: deps, cfg: cfg, logger: logger}
}

// Submit creates a pending report owned by the caller. The input is never
// modified and the caller's draft is only cleared on success.
func (s *SubmissionService) Submit(ctx context.Context, in ports.SubmitReportInput) (*ports.SubmitReportResult, error) {
	// 1. Identity.
	ident, err := s.deps.Gate.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	log := s.logger.With().Str("user_id", ident.ID).Logger()

	key, res, err := s.claim(ctx, ident.ID, strings.TrimSpace(in.IdempotencyKey), log)
	if err != nil || res != nil {
		return res, err
	}
	stored := false
	if key != "" {
		defer func() {
			if !stored {
				s.releaseClaim(ctx, ident.ID, key, log)
			}
		}()
	}

	// 2. Field validation.
	location, coords := s.resolveLocation(ctx, ident.ID, in, log)
	report, err := domain.NewReport(ident.ID, in.Category, location, in.Description, "", coords)
	if err != nil {
		return nil, err
	}

	// 3 + 4. Media preparation and upload, only when a photo is attached.
	var uploaded *ports.UploadedObject
	if in.Photo.Present() {
		data, err := s.preparePhoto(ctx, in.Photo, log)
		if err != nil {
			return nil, err
		}
		uploaded, err = s.upload(ctx, data)
		if err != nil {
			log.Warn().Err(err).Msg("photo upload failed")
			return nil, err
		}
		report.PhotoURL = uploaded.URL
	}

	// 5. Persistence.
	id, err := s.deps.Reports.Create(ctx, report)
	if err != nil {
		log.Error().Err(err).Msg("failed to persist report")
		if uploaded != nil {
			s.discardUpload(ctx, uploaded, log)
		}
		return nil, &domain.PersistenceError{Err: err}
	}
	stored = true

	// 6. Success.
	s.afterCreate(ctx, ident.ID, key, id, log)
	log.Info().Str("report_id", id).Bool("photo", uploaded != nil).Msg("report submitted")

	return &ports.SubmitReportResult{
		ReportID:  id,
		PhotoURL:  report.PhotoURL,
		Status:    domain.StatusPending,
		CreatedAt: report.CreatedAt,
	}, nil
}

// claim reserves the idempotency key before any side effect. It returns the
// key to complete on success ("" when the submission runs without one), or
// the earlier result when the key already produced a report. A key held by a
// submission still in flight fails with ErrSubmissionBusy.
func (s *SubmissionService) claim(ctx context.Context, userID, key string, log zerolog.Logger) (string, *ports.SubmitReportResult, error) {
	if key == "" || s.deps.Dedup == nil {
		return "", nil, nil
	}
	claimed, reportID, err := s.deps.Dedup.Claim(ctx, userID, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("idempotency claim failed, submitting anyway")
		return "", nil, nil
	case claimed:
		return key, nil, nil
	case reportID == "":
		log.Info().Str("idempotency_key", key).Msg("submission with this key already in flight")
		return "", nil, domain.ErrSubmissionBusy
	}
	if res := s.replay(ctx, userID, reportID, log); res != nil {
		log.Info().Str("idempotency_key", key).Str("report_id", reportID).Msg("idempotent replay")
		return "", res, nil
	}
	// The earlier report is gone; submit again without rebinding the key.
	return "", nil, nil
}

func (s *SubmissionService) releaseClaim(ctx context.Context, userID, key string, log zerolog.Logger) {
	if err := s.deps.Dedup.Release(context.WithoutCancel(ctx), userID, key); err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

// replay loads the report an idempotency key produced, or nil when it no
// longer belongs to the caller.
func (s *SubmissionService) replay(ctx context.Context, userID, reportID string, log zerolog.Logger) *ports.SubmitReportResult {
	existing, err := s.deps.Reports.FindByID(ctx, reportID)
	if err != nil || existing.UserID != userID {
		if err != nil && !errors.Is(err, domain.ErrReportNotFound) {
			log.Warn().Err(err).Str("report_id", reportID).Msg("idempotent replay lookup failed")
		}
		return nil
	}
	return &ports.SubmitReportResult{
		ReportID:       existing.ID,
		PhotoURL:       existing.PhotoURL,
		Status:         existing.Status,
		CreatedAt:      existing.CreatedAt,
		AlreadyExisted: true,
	}
}

// resolveLocation uses the submitted address, falling back to the location
// picked on the caller's draft when the form carries none.
func (s *SubmissionService) resolveLocation(ctx context.Context, userID string, in ports.SubmitReportInput, log zerolog.Logger) (string, *domain.Coordinates) {
	location := strings.TrimSpace(in.Location)
	coords := in.Coordinates
	if location != "" || s.deps.Drafts == nil {
		return location, coords
	}

	picked, err := s.deps.Drafts.LoadLocation(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load picked location")
		return location, coords
	}
	if picked == nil {
		return location, coords
	}
	if coords == nil {
		c := picked.Coordinates
		coords = &c
	}
	return picked.Address, coords
}

// preparePhoto reads, checks and compresses the photo. Compression failure
// falls back to the original bytes.
func (s *SubmissionService) preparePhoto(ctx context.Context, photo *ports.PhotoInput, log zerolog.Logger) ([]byte, error) {
	if photo.Size > s.cfg.MaxPhotoBytes {
		return nil, &domain.ValidationError{Fields: []string{"photo"}}
	}

	data, err := readPhoto(photo, s.cfg.MaxPhotoBytes)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Media.Check(photo.ContentType, data); err != nil {
		if errors.Is(err, domain.ErrNotAnImage) {
			return nil, &domain.ValidationError{Fields: []string{"photo"}}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMedia, err)
	}

	prepared, err := s.deps.Media.Compress(ctx, data)
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(data)).Msg("compression failed, uploading original")
		return data, nil
	}
	log.Debug().
		Int("original_bytes", len(data)).
		Int("prepared_bytes", len(prepared.Data)).
		Int("width", prepared.Width).
		Int("height", prepared.Height).
		Msg("photo prepared")
	return prepared.Data, nil
}

func readPhoto(photo *ports.PhotoInput, limit int64) ([]byte, error) {
	rc, err := photo.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMedia, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMedia, err)
	}
	if int64(len(data)) > limit {
		return nil, &domain.ValidationError{Fields: []string{"photo"}}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty photo", domain.ErrMedia)
	}
	return data, nil
}

func (s *SubmissionService) upload(ctx context.Context, data []byte) (*ports.UploadedObject, error) {
	if s.deps.Uploader == nil {
		return nil, domain.ErrNotConfigured
	}
	obj, err := s.deps.Uploader.Upload(ctx, data, s.cfg.UploadFolder)
	if err != nil {
		var ue *domain.UploadError
		if errors.As(err, &ue) || errors.Is(err, domain.ErrNotConfigured) {
			return nil, err
		}
		return nil, &domain.UploadError{Detail: err.Error(), Err: err}
	}
	if obj == nil || strings.TrimSpace(obj.URL) == "" {
		return nil, &domain.UploadError{Detail: "object store returned no url"}
	}
	return obj, nil
}

// discardUpload removes an object whose report could not be stored.
// Failure here is logged only; the caller still sees the persistence error.
func (s *SubmissionService) discardUpload(ctx context.Context, obj *ports.UploadedObject, log zerolog.Logger) {
	if obj.PublicID == "" {
		log.Warn().Str("photo_url", obj.URL).Msg("orphaned upload has no public id")
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.deps.Uploader.Delete(cctx, obj.PublicID); err != nil {
		log.Warn().Err(err).Str("public_id", obj.PublicID).Msg("failed to delete orphaned upload")
		return
	}
	log.Info().Str("public_id", obj.PublicID).Msg("orphaned upload deleted")
}

func (s *SubmissionService) afterCreate(ctx context.Context, userID, key, reportID string, log zerolog.Logger) {
	if s.deps.Drafts != nil {
		if err := s.deps.Drafts.Clear(ctx, userID); err != nil {
			log.Warn().Err(err).Msg("failed to clear draft")
		}
	}
	if key != "" {
		if err := s.deps.Dedup.Complete(ctx, userID, key, reportID); err != nil {
			log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to record idempotency key")
		}
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.ReportsChanged(ctx, domain.ReportChange{
			Kind:     domain.ChangeCreated,
			ReportID: reportID,
			OwnerID:  userID,
			Status:   domain.StatusPending,
			At:       time.Now().UTC(),
		})
	}
}
