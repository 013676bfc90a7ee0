package pipeline

import (
	"context"
	"errors"
	"time"

	"clipmerge/internal/filtergraph"
	"clipmerge/internal/job"
	"clipmerge/internal/logging"
	"clipmerge/internal/metrics"
	"clipmerge/internal/publisher"
	"clipmerge/internal/staging"
	"clipmerge/internal/transcoder"
)

// Engine starts merge invocations. *transcoder.Runner satisfies it.
type Engine interface {
	Start(ctx context.Context, req transcoder.Request) (*transcoder.Invocation, error)
}

// Merger owns the collaborators shared by every job.
type Merger struct {
	scratchRoot string
	engine      Engine
	publisher   publisher.Publisher
}

// New creates a Merger whose jobs work under scratchRoot.
func New(scratchRoot string, engine Engine, pub publisher.Publisher) *Merger {
	return &Merger{
		scratchRoot: scratchRoot,
		engine:      engine,
		publisher:   publisher.Instrument(pub),
	}
}

// ScratchRoot returns the directory job working directories are created in.
func (m *Merger) ScratchRoot() string {
	return m.scratchRoot
}

// Merge concatenates assets in order and publishes the result. Any error is
// a *job.Error. ctx is passed to the engine and the publisher; callers that
// must not abort a started job on client disconnect should detach it first.
func (m *Merger) Merge(ctx context.Context, assets []job.UploadedAsset) (res publisher.Result, err error) {
	j := job.New(m.scratchRoot)
	log := logging.ForJob(j.ID)
	start := time.Now()

	metrics.MergeJobsInProgress.Inc()
	log.Info("Merge requested with %d input(s)", len(assets))

	defer func() {
		metrics.MergeJobsInProgress.Dec()

		outcome := "done"
		if err != nil {
			err = classify(err)
			j.Fail()
			outcome = job.KindOf(err).String()
			log.Error("Merge failed (%s): %v", outcome, err)
		}

		m.cleanup(j, log)

		metrics.MergeJobsTotal.WithLabelValues(outcome).Inc()
		metrics.MergeJobDuration.Observe(time.Since(start).Seconds())
	}()

	stageStart := time.Now()
	if err := staging.Stage(j, assets); err != nil {
		return publisher.Result{}, err
	}
	observeStage("staging", stageStart)
	metrics.MergeInputsPerJob.Observe(float64(len(j.Assets)))
	log.Debug("Staged %d input(s) in %s", len(j.Assets), j.WorkDir)

	outputPath, err := m.transcode(ctx, j, log)
	if err != nil {
		return publisher.Result{}, err
	}

	if err := j.Transition(job.StatusPublishing); err != nil {
		return publisher.Result{}, err
	}
	publishStart := time.Now()
	res, err = m.publisher.Publish(ctx, outputPath, j.PublicID())
	if err != nil {
		return publisher.Result{}, err
	}
	observeStage("publishing", publishStart)

	if err := j.Transition(job.StatusDone); err != nil {
		return publisher.Result{}, err
	}
	log.Info("Merge completed in %v: %s", time.Since(start).Round(time.Millisecond), res.SecureURL)
	return res, nil
}

func (m *Merger) transcode(ctx context.Context, j *job.MergeJob, log *logging.JobLogger) (string, error) {
	if err := j.Transition(job.StatusTranscoding); err != nil {
		return "", err
	}

	graph, err := filtergraph.Build(len(j.Assets))
	if err != nil {
		return "", job.TranscodeError(err)
	}

	start := time.Now()
	inv, err := m.engine.Start(ctx, transcoder.Request{
		JobID:      j.ID,
		Inputs:     j.InputPaths(),
		Graph:      graph,
		OutputPath: j.OutputPath,
		OnStart: func(string) {
			log.Debug("Transcode started")
		},
	})
	if err != nil {
		return "", err
	}

	out := inv.Wait()
	if out.Err != nil {
		return "", out.Err
	}
	observeStage("transcoding", start)
	log.Debug("Transcode finished in %v", time.Since(start).Round(time.Millisecond))
	return out.OutputPath, nil
}

// cleanup is best effort: a failure is logged and counted but never changes
// the job's outcome.
func (m *Merger) cleanup(j *job.MergeJob, log *logging.JobLogger) {
	start := time.Now()
	if err := j.Cleanup(); err != nil {
		metrics.CleanupFailuresTotal.Inc()
		log.Warn("Failed to remove working directory %s: %v", j.WorkDir, err)
		return
	}
	observeStage("cleanup", start)
}

func observeStage(stage string, start time.Time) {
	metrics.MergeStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// classify ensures err carries a kind.
func classify(err error) error {
	var jerr *job.Error
	if errors.As(err, &jerr) {
		return err
	}
	return &job.Error{Kind: job.KindUnknown, Msg: "failed to merge videos", Err: err}
}
