package handlers

import (
	"context"
	"time"

	"clipmerge/internal/convert"
	"clipmerge/internal/job"
	"clipmerge/internal/publisher"

	"golang.org/x/sync/semaphore"
)

// Merger runs a merge job to completion.
type Merger interface {
	Merge(ctx context.Context, assets []job.UploadedAsset) (publisher.Result, error)
}

// ImageConverter converts one spooled image.
type ImageConverter interface {
	Convert(ctx context.Context, src string, opts convert.ImageOptions) (convert.Result, error)
}

// AudioConverter converts one spooled audio file.
type AudioConverter interface {
	Convert(ctx context.Context, src, format string) (convert.Result, error)
}

// Gate delays memory-heavy work until resources allow it.
type Gate interface {
	Wait(ctx context.Context) error
}

// DependencyCheck is one named dependency probe for /readyz.
type DependencyCheck struct {
	Name  string
	Check func() error
}

// Options carries request limits and paths shared by every handler.
type Options struct {
	SpoolDir                 string
	MaxUploadSize            int64
	MaxConcurrentConversions int
	ReadinessChecks          []DependencyCheck
	// ImageGate, if set, is waited on before each in-process image decode.
	ImageGate                Gate
}

type Handlers struct {
	merger      Merger
	images      ImageConverter
	audio       AudioConverter
	spoolDir    string
	maxUpload   int64
	conversions *semaphore.Weighted
	checks      []DependencyCheck
	imageGate   Gate
	startTime   time.Time
}

func New(merger Merger, images ImageConverter, audio AudioConverter, opts Options) *Handlers {
	slots := opts.MaxConcurrentConversions
	if slots < 1 {
		slots = 1
	}
	return &Handlers{
		merger:      merger,
		images:      images,
		audio:       audio,
		spoolDir:    opts.SpoolDir,
		maxUpload:   opts.MaxUploadSize,
		conversions: semaphore.NewWeighted(int64(slots)),
		checks:      opts.ReadinessChecks,
		imageGate:   opts.ImageGate,
		startTime:   time.Now(),
	}
}
