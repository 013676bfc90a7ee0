package convert

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"clipmerge/internal/filesystem"
	"clipmerge/internal/logging"
)

// Engine runs a single-input transcode. *transcoder.Runner satisfies it.
type Engine interface {
	Transcode(ctx context.Context, input, output string, codecArgs ...string) error
}

// audioCodecs maps output formats to engine codec arguments. Video streams
// such as embedded cover art are dropped.
var audioCodecs = map[string][]string{
	"mp3":  {"-vn", "-c:a", "libmp3lame", "-q:a", "2"},
	"wav":  {"-vn", "-c:a", "pcm_s16le"},
	"ogg":  {"-vn", "-c:a", "libvorbis", "-q:a", "5"},
	"aac":  {"-vn", "-c:a", "aac", "-b:a", "192k"},
	"flac": {"-vn", "-c:a", "flac"},
}

// DefaultAudioFormat is used when the request names none.
const DefaultAudioFormat = "mp3"

// AudioConverter re-encodes audio into its output directory.
type AudioConverter struct {
	engine Engine
	dir    string
}

// NewAudioConverter creates dir if needed.
func NewAudioConverter(engine Engine, dir string) (*AudioConverter, error) {
	if err := filesystem.MkdirAll(dir); err != nil {
		return nil, err
	}
	return &AudioConverter{engine: engine, dir: dir}, nil
}

// AudioCodecArgs returns the engine arguments for format, if supported.
func AudioCodecArgs(format string) ([]string, bool) {
	args, ok := audioCodecs[normalizeFormat(format)]
	return args, ok
}

// Convert re-encodes src to format.
func (c *AudioConverter) Convert(ctx context.Context, src, format string) (res Result, err error) {
	f := normalizeFormat(format)
	if f == "" {
		f = DefaultAudioFormat
	}
	start := time.Now()
	defer func() { record("audio", f, start, err) }()

	args, ok := audioCodecs[f]
	if !ok {
		f = "unsupported"
		return Result{}, UnsupportedFormatError("audio", format)
	}

	name := outputName(f)
	dst := filepath.Join(c.dir, name)
	if err := c.engine.Transcode(ctx, src, dst, args...); err != nil {
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("failed to remove partial output %s: %v", dst, rmErr)
		}
		return Result{}, err
	}

	logging.Debug("Converted audio to %s: %s", f, name)
	return Result{Name: name, Path: dst, Format: f}, nil
}
