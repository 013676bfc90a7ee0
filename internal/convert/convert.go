package convert

import (
	"fmt"
	"strings"
	"time"

	"clipmerge/internal/job"
	"clipmerge/internal/metrics"

	"github.com/google/uuid"
)

// Output subdirectories under the service's output directory.
const (
	ImageDir = "uploads/image"
	AudioDir = "uploads/audio"
)

// Result names a converted file.
type Result struct {
	// Name is the base name inside the converter's output directory.
	Name string
	// Path is the absolute location on disk.
	Path string
	// Format is the normalized output format.
	Format string
}

// UnsupportedFormatError rejects a requested output format.
func UnsupportedFormatError(kind, format string) *job.Error {
	return &job.Error{
		Kind: job.KindParse,
		Msg:  fmt.Sprintf("unsupported %s format %q", kind, format),
	}
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

func outputName(ext string) string {
	return uuid.NewString() + "." + ext
}

func record(kind, format string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ConversionsTotal.WithLabelValues(kind, format, status).Inc()
	metrics.ConversionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
