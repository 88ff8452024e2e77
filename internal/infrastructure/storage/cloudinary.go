// Package storage uploads prepared report photos to Cloudinary.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// Config holds the Cloudinary account credentials.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
}

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryUploader implements ports.ObjectUploader.
type CloudinaryUploader struct {
	api    uploadAPI
	logger zerolog.Logger
}

// NewCloudinaryUploader fails with domain.ErrNotConfigured when any credential is missing.
func NewCloudinaryUploader(cfg Config, logger zerolog.Logger) (*CloudinaryUploader, error) {
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, domain.ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotConfigured, err)
	}
	return &CloudinaryUploader{api: &cld.Upload, logger: logger}, nil
}

// Upload stores data as a new image in folder and returns its HTTPS URL.
// Any failure is reported as *domain.UploadError carrying Cloudinary's message.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, folder string) (*ports.UploadedObject, error) {
	res, err := u.api.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return nil, &domain.UploadError{Detail: err.Error(), Err: err}
	}
	if res == nil {
		return nil, &domain.UploadError{Detail: "empty response from cloudinary"}
	}
	if res.Error.Message != "" {
		return nil, &domain.UploadError{Detail: res.Error.Message}
	}
	if res.SecureURL == "" {
		return nil, &domain.UploadError{Detail: "cloudinary returned no secure url"}
	}

	u.logger.Debug().Str("public_id", res.PublicID).Int("bytes", len(data)).Msg("photo uploaded")
	return &ports.UploadedObject{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// Delete destroys an uploaded image. A missing object is not an error.
func (u *CloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("empty public id")
	}
	res, err := u.api.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res != nil && res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res != nil && res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy: unexpected result %q", res.Result)
	}
	return nil
}
