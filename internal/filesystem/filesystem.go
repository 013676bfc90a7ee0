package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"clipmerge/internal/logging"
	"clipmerge/internal/metrics"
)

// VolumeResolver maps file paths to known volume names for metric labeling.
// It uses longest-prefix matching on absolute paths.
type VolumeResolver struct {
	// mounts is sorted by path length descending for longest-prefix matching
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute path with trailing slash (e.g., "/tmp/clipmerge/")
	name string // volume label (e.g., "scratch")
}

// NewVolumeResolver creates a resolver from a map of volume name → absolute path.
//
//	NewVolumeResolver(map[string]string{
//	    "scratch": "/tmp/clipmerge",
//	    "output":  "/srv/clipmerge/public",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, string(filepath.Separator)) {
			absPath += string(filepath.Separator)
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given file path.
// Returns "unknown" if the path doesn't match any configured volume.
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+string(filepath.Separator), mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

// defaultResolver is the package-level resolver set at startup
var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the package-level volume resolver.
// Call this once at startup after loading configuration.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

func observe(path, op string, start time.Time, err error) {
	volume := defaultResolver.Resolve(path)
	metrics.FilesystemOperationDuration.WithLabelValues(volume, op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FilesystemOperationErrors.WithLabelValues(volume, op).Inc()
	}
}

// isCrossDevice reports whether err is the EXDEV failure os.Rename returns
// when source and destination live on different filesystems.
func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	var errno syscall.Errno
	if errors.As(linkErr.Err, &errno) {
		return errno == syscall.EXDEV
	}
	return false
}

// Move relocates src to dst. A plain rename is attempted first; when the two
// paths are on different devices the file is copied and the source removed.
// An existing dst is replaced.
func Move(src, dst string) (err error) {
	start := time.Now()
	defer func() { observe(dst, "move", start, err) }()

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("rename %s: %w", filepath.Base(src), err)
	}

	metrics.FilesystemCrossDeviceMoves.Inc()
	logging.Debug("Cross-device move from %s to %s, falling back to copy", src, dst)

	if err = copyFile(src, dst); err != nil {
		return err
	}
	if rmErr := os.Remove(src); rmErr != nil {
		logging.Warn("failed to remove %s after copy: %v", src, rmErr)
	}
	return nil
}

// AtomicCopy copies src to dst through a temporary sibling file and a final
// rename, so readers of dst never observe a partially written file and a
// repeated copy to the same dst replaces it instead of creating a second file.
func AtomicCopy(src, dst string) (n int64, err error) {
	start := time.Now()
	defer func() { observe(dst, "copy", start, err) }()

	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	in, err := os.Open(src)
	if err != nil {
		_ = tmp.Close()
		return 0, err
	}
	defer in.Close()

	n, err = io.Copy(tmp, in)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return 0, err
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return 0, err
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}

// MkdirAll creates dir and any missing parents with owner-only permissions.
func MkdirAll(dir string) (err error) {
	start := time.Now()
	defer func() { observe(dir, "mkdir", start, err) }()
	return os.MkdirAll(dir, 0o700)
}

// RemoveAll removes path and everything below it. A missing path is not an error.
func RemoveAll(path string) (err error) {
	start := time.Now()
	defer func() { observe(path, "remove", start, err) }()
	return os.RemoveAll(path)
}

// DirSize calculates the total size of the regular files below path.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// ScratchUsage reports the byte total and the number of immediate
// subdirectories of root. A missing root reports zero usage.
func ScratchUsage(root string) (metrics.ScratchStats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return metrics.ScratchStats{}, nil
		}
		return metrics.ScratchStats{}, err
	}

	var stats metrics.ScratchStats
	for _, entry := range entries {
		if entry.IsDir() {
			stats.Jobs++
		}
	}

	size, err := DirSize(root)
	if err != nil {
		return stats, err
	}
	stats.Bytes = size
	return stats, nil
}

// ScratchProvider adapts ScratchUsage to metrics.ScratchProvider.
type ScratchProvider string

// ScratchStats implements metrics.ScratchProvider
func (p ScratchProvider) ScratchStats() (metrics.ScratchStats, error) {
	return ScratchUsage(string(p))
}
