package publisher

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"clipmerge/internal/filesystem"
	"clipmerge/internal/job"
)

// MergedDir is the subdirectory of the output directory that holds
// published merges. It is also the URL path segment they are served under.
const MergedDir = "merged"

// Local publishes into a directory on this host.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the merged subdirectory of outputDir and returns a
// publisher whose URLs are rooted at baseURL.
func NewLocal(outputDir, baseURL string) (*Local, error) {
	if outputDir == "" {
		return nil, errors.New("output directory is required for the local backend")
	}
	dir := filepath.Join(outputDir, MergedDir)
	if err := filesystem.MkdirAll(dir); err != nil {
		return nil, err
	}
	return &Local{dir: dir, baseURL: baseURL}, nil
}

// Name returns the backend label.
func (l *Local) Name() string {
	return BackendLocal
}

// Publish copies localPath to <dir>/<publicID>.mp4, replacing any earlier copy.
func (l *Local) Publish(ctx context.Context, localPath, publicID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, job.PublishError(err)
	}
	if publicID == "" || filepath.Base(publicID) != publicID {
		return Result{}, publishError("invalid public id %q", publicID)
	}

	name := publicID + ".mp4"
	if _, err := filesystem.AtomicCopy(localPath, filepath.Join(l.dir, name)); err != nil {
		return Result{}, job.PublishError(err)
	}

	if l.baseURL == "" {
		return Result{PublicID: publicID, SecureURL: "/" + MergedDir + "/" + name}, nil
	}
	u, err := url.JoinPath(l.baseURL, MergedDir, name)
	if err != nil {
		return Result{}, job.PublishError(err)
	}
	return Result{PublicID: publicID, SecureURL: u}, nil
}

// Dir returns the directory artifacts are written to.
func (l *Local) Dir() string {
	return l.dir
}

// Exists reports whether an artifact for publicID has been published.
func (l *Local) Exists(publicID string) bool {
	_, err := os.Stat(filepath.Join(l.dir, publicID+".mp4"))
	return err == nil
}
