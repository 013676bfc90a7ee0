package job

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a MergeJob.
type Status int

const (
	// StatusStaging is the initial state: uploads are being relocated.
	StatusStaging Status = iota
	// StatusTranscoding means the engine invocation has been requested.
	StatusTranscoding
	// StatusPublishing means the artifact is being uploaded.
	StatusPublishing
	// StatusDone is terminal: the artifact was published.
	StatusDone
	// StatusFailed is terminal: some stage failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStaging:
		return "staging"
	case StatusTranscoding:
		return "transcoding"
	case StatusPublishing:
		return "publishing"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ErrInvalidTransition is returned for any transition the state machine forbids.
var ErrInvalidTransition = errors.New("invalid job status transition")

// OutputName is the basename of the transcoded artifact inside a job directory.
const OutputName = "output.mp4"

// UploadedAsset is one received video part. TempPath moves from the upload
// spool to the job directory during staging.
type UploadedAsset struct {
	TempPath      string
	OriginalName  string
	SequenceIndex int
}

// MergeJob is one merge request's unit of work. It is owned by a single
// request flow and never shared.
type MergeJob struct {
	ID         string
	CreatedAt  time.Time
	Assets     []UploadedAsset
	WorkDir    string
	OutputPath string

	mu     sync.Mutex
	status Status

	cleanupOnce sync.Once
	cleanupErr  error
}

// New allocates a job with a fresh identifier and a working directory path
// under scratchRoot. The directory itself is created by the stager.
func New(scratchRoot string) *MergeJob {
	return newWithClock(scratchRoot, time.Now)
}

func newWithClock(scratchRoot string, now func() time.Time) *MergeJob {
	id := uuid.NewString()
	workDir := filepath.Join(scratchRoot, id)
	return &MergeJob{
		ID:         id,
		CreatedAt:  now().UTC(),
		WorkDir:    workDir,
		OutputPath: filepath.Join(workDir, OutputName),
		status:     StatusStaging,
	}
}

// Status returns the current lifecycle state.
func (j *MergeJob) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Transition moves the job to next. Only the forward path
// Staging → Transcoding → Publishing → Done and a move to Failed from any
// non-terminal state are accepted.
func (j *MergeJob) Transition(next Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !allowed(j.status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.status, next)
	}
	j.status = next
	return nil
}

// Fail moves a non-terminal job to Failed. It is a no-op for terminal jobs.
func (j *MergeJob) Fail() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.status.Terminal() {
		j.status = StatusFailed
	}
}

func allowed(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	return to == from+1
}

// InputPaths returns the staged asset paths in submission order.
func (j *MergeJob) InputPaths() []string {
	paths := make([]string, len(j.Assets))
	for i, a := range j.Assets {
		paths[i] = a.TempPath
	}
	return paths
}

// PublicID is the remote identifier for this job's artifact. It combines the
// creation timestamp with the job identifier so that it never depends on
// client input and stays stable across publish attempts for the same job.
func (j *MergeJob) PublicID() string {
	ts := j.CreatedAt.Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer("-", "_", ":", "_", ".", "_").Replace(ts)
	short := strings.ReplaceAll(j.ID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return "merged_video_" + ts + "_" + short
}
