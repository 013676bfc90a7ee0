package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"clipmerge/internal/filtergraph"
	"clipmerge/internal/job"
	"clipmerge/internal/logging"
	"clipmerge/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// diagnosticLimit caps how much engine stderr is retained for error reports.
const diagnosticLimit = 4096

// Config locates the engine binaries and bounds engine concurrency. It is
// built once at startup and handed to New.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	// MaxConcurrent is the number of engine processes allowed to run at once
	// across all jobs. Values below 1 are treated as 1.
	MaxConcurrent int64
}

// Runner launches ffmpeg processes. It is safe for concurrent use; each
// invocation is independent and owns its own inputs and output path.
type Runner struct {
	cfg       Config
	slots     *semaphore.Weighted
	processes map[string]*exec.Cmd
	processMu sync.Mutex
}

// Request describes one merge invocation.
type Request struct {
	JobID      string
	Inputs     []string
	Graph      filtergraph.GraphSpec
	OutputPath string
	// OnStart, if set, observes the non-terminal "started" event with the
	// command line that was launched.
	OnStart func(commandLine string)
}

// Outcome is the single terminal event of an invocation: either OutputPath
// is set or Err is a *job.Error of kind KindTranscode.
type Outcome struct {
	OutputPath string
	Err        error
}

// Invocation is a running merge. Done is closed exactly once, after which
// Outcome is fixed.
type Invocation struct {
	done    chan struct{}
	outcome Outcome
}

// Done is closed when the invocation reaches its terminal event.
func (i *Invocation) Done() <-chan struct{} {
	return i.done
}

// Outcome returns the terminal event. It must only be read after Done is closed.
func (i *Invocation) Outcome() Outcome {
	return i.outcome
}

// Wait blocks until the terminal event and returns it.
func (i *Invocation) Wait() Outcome {
	<-i.done
	return i.outcome
}

// EngineError carries the engine's own diagnostic for a failed run.
type EngineError struct {
	ExitCode   int
	Diagnostic string
	Err        error
}

func (e *EngineError) Error() string {
	if e.Diagnostic == "" {
		return e.Err.Error()
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, e.Diagnostic)
	}
	return e.Diagnostic
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// New creates a Runner from cfg.
func New(cfg Config) *Runner {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}

	return &Runner{
		cfg:       cfg,
		slots:     semaphore.NewWeighted(cfg.MaxConcurrent),
		processes: make(map[string]*exec.Cmd),
	}
}

// Config returns the configuration the runner was built with.
func (r *Runner) Config() Config {
	return r.cfg
}

// Start validates req and launches the merge asynchronously. A non-nil error
// means nothing was launched; otherwise the returned Invocation will deliver
// exactly one Outcome.
func (r *Runner) Start(ctx context.Context, req Request) (*Invocation, error) {
	if len(req.Inputs) == 0 {
		return nil, job.TranscodeError(errors.New("no inputs"))
	}
	if len(req.Inputs) != req.Graph.Inputs() {
		return nil, job.TranscodeError(fmt.Errorf("filter graph expects %d inputs, got %d",
			req.Graph.Inputs(), len(req.Inputs)))
	}
	if req.OutputPath == "" {
		return nil, job.TranscodeError(errors.New("no output path"))
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	inv := &Invocation{done: make(chan struct{})}
	go func() {
		defer close(inv.done)
		inv.outcome = r.runMerge(ctx, req)
	}()
	return inv, nil
}

// Run is the blocking form of Start.
func (r *Runner) Run(ctx context.Context, req Request) Outcome {
	inv, err := r.Start(ctx, req)
	if err != nil {
		return Outcome{Err: err}
	}
	return inv.Wait()
}

func (r *Runner) runMerge(ctx context.Context, req Request) Outcome {
	err := r.withSlot(ctx, func() error {
		return r.exec(ctx, req.JobID, "merge", MergeArgs(req), req.OnStart)
	})
	if err != nil {
		return Outcome{Err: job.TranscodeError(err)}
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil || info.Size() == 0 {
		return Outcome{Err: job.TranscodeError(errors.New("engine exited without producing output"))}
	}
	return Outcome{OutputPath: req.OutputPath}
}

// Transcode runs a single-input conversion from input to output with the
// given codec arguments. It shares the runner's concurrency limit with merges.
func (r *Runner) Transcode(ctx context.Context, input, output string, codecArgs ...string) error {
	args := append(baseArgs(), "-i", input)
	args = append(args, codecArgs...)
	args = append(args, output)

	err := r.withSlot(ctx, func() error {
		return r.exec(ctx, uuid.NewString(), "convert", args, nil)
	})
	if err != nil {
		return &job.Error{Kind: job.KindTranscode, Msg: "conversion failed", Err: err}
	}
	return nil
}

func (r *Runner) withSlot(ctx context.Context, fn func() error) error {
	waitStart := time.Now()
	if err := r.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for a transcoding slot: %w", err)
	}
	defer r.slots.Release(1)
	metrics.TranscoderSlotWait.Observe(time.Since(waitStart).Seconds())
	return fn()
}

func baseArgs() []string {
	return []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}
}

// MergeArgs builds the ffmpeg argument list for a merge request.
func MergeArgs(req Request) []string {
	args := baseArgs()
	for _, in := range req.Inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-filter_complex", req.Graph.Expression())
	args = append(args, req.Graph.MapArgs()...)
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		req.OutputPath,
	)
	return args
}

func (r *Runner) exec(ctx context.Context, key, kind string, args []string, onStart func(string)) error {
	cmd := exec.CommandContext(ctx, r.cfg.FFmpegPath, args...)
	stderr := newTailBuffer(diagnosticLimit)
	cmd.Stderr = stderr

	r.processMu.Lock()
	r.processes[key] = cmd
	r.processMu.Unlock()
	defer func() {
		r.processMu.Lock()
		delete(r.processes, key)
		r.processMu.Unlock()
	}()

	metrics.TranscoderJobsInProgress.Inc()
	defer metrics.TranscoderJobsInProgress.Dec()
	start := time.Now()

	if err := cmd.Start(); err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues(kind, "error").Inc()
		return &EngineError{ExitCode: -1, Err: fmt.Errorf("failed to start ffmpeg: %w", err)}
	}

	commandLine := r.cfg.FFmpegPath + " " + strings.Join(args, " ")
	logging.Debug("Started %s engine process %d: %s", kind, cmd.Process.Pid, commandLine)
	if onStart != nil {
		onStart(commandLine)
	}

	err := cmd.Wait()
	metrics.TranscoderJobDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.TranscoderJobsTotal.WithLabelValues(kind, "error").Inc()
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		diag := stderr.String()
		if diag == "" && ctx.Err() != nil {
			diag = ctx.Err().Error()
		}
		logging.Error("FFmpeg %s failed (exit %d): %s", kind, exitCode, diag)
		return &EngineError{ExitCode: exitCode, Diagnostic: diag, Err: err}
	}

	metrics.TranscoderJobsTotal.WithLabelValues(kind, "success").Inc()
	return nil
}

// Cleanup stops all active engine processes.
func (r *Runner) Cleanup() {
	r.processMu.Lock()
	defer r.processMu.Unlock()

	for key, cmd := range r.processes {
		if cmd.Process != nil {
			logging.Info("Killing transcoding process for: %s", key)
			if err := cmd.Process.Kill(); err != nil {
				logging.Warn("failed to kill transcoding process for %s: %v", key, err)
			}
		}
	}
}

// ActiveProcesses returns the number of engine processes currently tracked.
func (r *Runner) ActiveProcesses() int {
	r.processMu.Lock()
	defer r.processMu.Unlock()
	return len(r.processes)
}
