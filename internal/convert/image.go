package convert

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"clipmerge/internal/filesystem"
	"clipmerge/internal/job"
	"clipmerge/internal/logging"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP input support
)

const (
	// MaxImageDimension is the largest width or height accepted for resize targets
	// and the bound large inputs are downscaled to before encoding.
	MaxImageDimension = 8192

	// MaxImagePixels caps decoded input size.
	MaxImagePixels = 40_000_000
)

// imageFormats maps accepted format names to the extension written.
var imageFormats = map[string]string{
	"jpeg": "jpg",
	"jpg":  "jpg",
	"png":  "png",
	"gif":  "gif",
	"bmp":  "bmp",
	"tiff": "tiff",
	"tif":  "tiff",
}

// DefaultImageFormat is used when the request names none.
const DefaultImageFormat = "png"

// ImageOptions controls an image conversion. Zero Width or Height keeps the
// aspect ratio; both zero keeps the original size.
type ImageOptions struct {
	Format string
	Width  int
	Height int
}

// ImageConverter re-encodes images into its output directory.
type ImageConverter struct {
	dir string
}

// NewImageConverter creates dir if needed.
func NewImageConverter(dir string) (*ImageConverter, error) {
	if err := filesystem.MkdirAll(dir); err != nil {
		return nil, err
	}
	return &ImageConverter{dir: dir}, nil
}

// Convert decodes src and writes it in opts.Format.
func (c *ImageConverter) Convert(ctx context.Context, src string, opts ImageOptions) (res Result, err error) {
	format := normalizeFormat(opts.Format)
	if format == "" {
		format = DefaultImageFormat
	}
	start := time.Now()
	defer func() { record("image", format, start, err) }()

	ext, ok := imageFormats[format]
	if !ok {
		format = "unsupported"
		return Result{}, UnsupportedFormatError("image", opts.Format)
	}
	if opts.Width < 0 || opts.Height < 0 || opts.Width > MaxImageDimension || opts.Height > MaxImageDimension {
		return Result{}, &job.Error{
			Kind: job.KindParse,
			Msg:  fmt.Sprintf("resize dimensions must be between 0 and %d", MaxImageDimension),
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, job.TranscodeError(err)
	}

	img, err := loadConstrained(src)
	if err != nil {
		return Result{}, &job.Error{Kind: job.KindParse, Msg: "failed to decode image", Err: err}
	}

	if opts.Width > 0 || opts.Height > 0 {
		img = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	name := outputName(ext)
	dst := filepath.Join(c.dir, name)
	if err := imaging.Save(img, dst, imaging.JPEGQuality(90)); err != nil {
		os.Remove(dst)
		return Result{}, job.TranscodeError(fmt.Errorf("encoding %s: %w", ext, err))
	}

	b := img.Bounds()
	logging.Debug("Converted image to %s (%dx%d): %s", ext, b.Dx(), b.Dy(), name)
	return Result{Name: name, Path: dst, Format: ext}, nil
}

// loadConstrained opens src with EXIF orientation applied. Inputs above
// MaxImagePixels are rejected before decoding; inputs wider or taller than
// MaxImageDimension are fitted inside it.
func loadConstrained(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(f)
	if closeErr := f.Close(); closeErr != nil {
		logging.Warn("failed to close image file %s: %v", src, closeErr)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Width*cfg.Height > MaxImagePixels {
		return nil, fmt.Errorf("image is %dx%d, more than %d pixels", cfg.Width, cfg.Height, MaxImagePixels)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	if cfg.Width > MaxImageDimension || cfg.Height > MaxImageDimension {
		logging.Info("Constraining large image %s from %dx%d", src, cfg.Width, cfg.Height)
		return imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos), nil
	}
	return img, nil
}
