package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

const (
	defaultMaxEdge        = 1024
	defaultMaxOutputBytes = 512 * 1024
	initialQuality        = 85
	minQuality            = 40
	qualityStep           = 10
	downscaleFactor       = 0.8
	maxDownscales         = 4
)

// Config bounds the prepared image.
type Config struct {
	MaxEdge        int
	MaxOutputBytes int
	// Workers limits concurrent decodes; 0 means runtime.NumCPU().
	Workers int
}

// Compressor re-encodes photos as JPEG within a pixel and byte budget.
type Compressor struct {
	cfg    Config
	sem    *semaphore.Weighted
	logger zerolog.Logger
}

func NewCompressor(cfg Config, logger zerolog.Logger) *Compressor {
	if cfg.MaxEdge <= 0 {
		cfg.MaxEdge = defaultMaxEdge
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Compressor{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
		logger: logger,
	}
}

// Check rejects anything that is not an image, judged by both the declared
// content type and the sniffed bytes.
func (c *Compressor) Check(contentType string, data []byte) error {
	declared := strings.ToLower(strings.TrimSpace(contentType))
	if declared != "" && declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
		return domain.ErrNotAnImage
	}
	if detected := mimetype.Detect(data); !strings.HasPrefix(detected.String(), "image/") {
		return fmt.Errorf("%w: detected %s", domain.ErrNotAnImage, detected.String())
	}
	return nil
}

// Compress decodes data, bounds the longest edge to MaxEdge and lowers the JPEG
// quality (then the resolution) until the output fits MaxOutputBytes. An input
// that is already a JPEG within both limits is returned unchanged.
func (c *Compressor) Compress(ctx context.Context, data []byte) (*ports.PreparedImage, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrCompression, err)
	}

	bounds := img.Bounds()
	if len(data) <= c.cfg.MaxOutputBytes && longestEdge(bounds) <= c.cfg.MaxEdge && mimetype.Detect(data).Is("image/jpeg") {
		return &ports.PreparedImage{Data: data, ContentType: "image/jpeg", Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	if longestEdge(bounds) > c.cfg.MaxEdge {
		img = imaging.Fit(img, c.cfg.MaxEdge, c.cfg.MaxEdge, imaging.Lanczos)
	}

	var best []byte
	var bestImg image.Image
	for scale := 0; scale <= maxDownscales; scale++ {
		for q := initialQuality; q >= minQuality; q -= qualityStep {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := encodeJPEG(img, q)
			if err != nil {
				return nil, fmt.Errorf("%w: encode: %v", domain.ErrCompression, err)
			}
			if best == nil || len(out) < len(best) {
				best, bestImg = out, img
			}
			if len(out) <= c.cfg.MaxOutputBytes {
				return c.prepared(out, img), nil
			}
		}
		b := img.Bounds()
		w := int(float64(b.Dx()) * downscaleFactor)
		h := int(float64(b.Dy()) * downscaleFactor)
		if w < 1 || h < 1 {
			break
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	c.logger.Debug().Int("bytes", len(best)).Int("budget", c.cfg.MaxOutputBytes).Msg("image still above budget after compression")
	return c.prepared(best, bestImg), nil
}

func (c *Compressor) prepared(data []byte, img image.Image) *ports.PreparedImage {
	b := img.Bounds()
	return &ports.PreparedImage{
		Data:        data,
		ContentType: "image/jpeg",
		Width:       b.Dx(),
		Height:      b.Dy(),
		Compressed:  true,
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func longestEdge(r image.Rectangle) int {
	if r.Dx() > r.Dy() {
		return r.Dx()
	}
	return r.Dy()
}
