package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("access forbidden")
	ErrReportNotFound   = errors.New("report not found")
	ErrMedia            = errors.New("photo could not be read")
	ErrPersistence      = errors.New("failed to save report")
	ErrNotConfigured    = errors.New("object storage is not configured")
	ErrNotAnImage       = errors.New("photo must be an image")
	ErrCompression      = errors.New("image compression failed")
	ErrGeocodingFailure = errors.New("reverse geocoding failed")
	ErrSubmissionBusy   = errors.New("a submission with this idempotency key is still in progress")
)

// ValidationError names every input field that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid or missing fields: " + strings.Join(e.Fields, ", ")
}

// Has reports whether field is among the failed ones.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// UploadError wraps an object store failure with the store's own message.
type UploadError struct {
	Detail string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Detail == "" {
		return "upload failed"
	}
	return "upload failed: " + e.Detail
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError carries the store's diagnostic while matching ErrPersistence.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return ErrPersistence.Error()
	}
	return ErrPersistence.Error() + ": " + e.Err.Error()
}

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }
