package ports

import (
	"context"
	"io"
)

// PhotoInput is a candidate photo attached to a submission.
type PhotoInput struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Present reports whether a non-empty photo was attached.
func (p *PhotoInput) Present() bool {
	return p != nil && p.Size > 0 && p.Open != nil
}

// PreparedImage is the output of media preparation.
type PreparedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Compressed  bool
}

// MediaPreparer validates and shrinks a photo to the configured budget.
// Check rejects non-image input with domain.ErrNotAnImage before any work.
// Compress returns domain.ErrCompression when the bytes cannot be re-encoded.
type MediaPreparer interface {
	Check(contentType string, data []byte) error
	Compress(ctx context.Context, data []byte) (*PreparedImage, error)
}

// UploadedObject is a durable, publicly reachable object.
type UploadedObject struct {
	URL      string
	PublicID string
}

// ObjectUploader stores prepared bytes under folder.
type ObjectUploader interface {
	Upload(ctx context.Context, data []byte, folder string) (*UploadedObject, error)
	Delete(ctx context.Context, publicID string) error
}
