package job

import (
	"errors"

	"clipmerge/internal/filesystem"
)

// ErrNotTerminal is returned by Cleanup for a job that is still running.
var ErrNotTerminal = errors.New("job has not reached a terminal status")

// Cleanup removes the job's working directory and everything in it: staged
// inputs and the transcoded output. The removal runs at most once; later
// calls return the first call's result without touching the filesystem.
func (j *MergeJob) Cleanup() error {
	if !j.Status().Terminal() {
		return ErrNotTerminal
	}
	j.cleanupOnce.Do(func() {
		j.cleanupErr = filesystem.RemoveAll(j.WorkDir)
	})
	return j.cleanupErr
}
