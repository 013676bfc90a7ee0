package publisher

import (
	"context"
	"fmt"
	"os"
	"time"

	"clipmerge/internal/job"
	"clipmerge/internal/logging"
	"clipmerge/internal/metrics"
)

// Backend names accepted by New.
const (
	BackendCloudinary = "cloudinary"
	BackendLocal      = "local"
)

// Result identifies a published artifact.
type Result struct {
	PublicID  string `json:"publicId"`
	SecureURL string `json:"url"`
}

// Publisher stores a local file under publicID.
type Publisher interface {
	Publish(ctx context.Context, localPath, publicID string) (Result, error)
	Name() string
}

// Config selects and configures a backend.
type Config struct {
	Backend       string
	CloudinaryURL string
	OutputDir     string
	PublicBaseURL string
}

// New builds the publisher named by cfg.Backend.
func New(cfg Config) (Publisher, error) {
	switch cfg.Backend {
	case BackendCloudinary, "":
		return NewCloudinary(cfg.CloudinaryURL)
	case BackendLocal:
		return NewLocal(cfg.OutputDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown publish backend %q", cfg.Backend)
	}
}

// Instrument wraps p so that every call is timed, counted and logged.
func Instrument(p Publisher) Publisher {
	if _, ok := p.(*instrumented); ok {
		return p
	}
	return &instrumented{next: p}
}

type instrumented struct {
	next Publisher
}

func (i *instrumented) Name() string {
	return i.next.Name()
}

func (i *instrumented) Publish(ctx context.Context, localPath, publicID string) (Result, error) {
	backend := i.next.Name()
	start := time.Now()

	res, err := i.next.Publish(ctx, localPath, publicID)
	metrics.PublishDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PublishTotal.WithLabelValues(backend, "error").Inc()
		logging.Error("Publish of %s to %s failed: %v", publicID, backend, err)
		return Result{}, err
	}

	metrics.PublishTotal.WithLabelValues(backend, "success").Inc()
	if info, statErr := os.Stat(localPath); statErr == nil {
		metrics.PublishBytesTotal.WithLabelValues(backend).Add(float64(info.Size()))
	}
	logging.Debug("Published %s to %s: %s", publicID, backend, res.SecureURL)
	return res, nil
}

func publishError(format string, args ...interface{}) error {
	return job.PublishError(fmt.Errorf(format, args...))
}
