package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"clipmerge/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestVolumeResolver(t *testing.T) {
	root := t.TempDir()
	scratch := filepath.Join(root, "scratch")
	nested := filepath.Join(root, "scratch", "special")

	vr := NewVolumeResolver(map[string]string{
		"scratch": scratch,
		"special": nested,
		"output":  filepath.Join(root, "out"),
	})

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(scratch, "job", "input_000.mp4"), "scratch"},
		{filepath.Join(nested, "file"), "special"},
		{scratch, "scratch"},
		{filepath.Join(root, "out", "merged", "a.mp4"), "output"},
		{filepath.Join(root, "scratchy", "file"), "unknown"},
		{"/somewhere/else", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := vr.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestVolumeResolverNil(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/tmp/x"); got != "unknown" {
		t.Errorf("Expected unknown for nil resolver, got %q", got)
	}
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	dst := filepath.Join(dir, "dst.mp4")
	writeFile(t, src, "clip")

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Expected source to be gone after move")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(data) != "clip" {
		t.Errorf("Expected destination content 'clip', got %q", data)
	}
}

func TestMoveMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Move(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("Expected error moving a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped ErrNotExist, got %v", err)
	}
}

func TestObserveLabelsByDefaultVolume(t *testing.T) {
	scratch := t.TempDir()
	SetDefaultVolumeResolver(NewVolumeResolver(map[string]string{"scratch": scratch}))
	t.Cleanup(func() { SetDefaultVolumeResolver(nil) })

	scratchErrors := metrics.FilesystemOperationErrors.WithLabelValues("scratch", "move")
	unknownErrors := metrics.FilesystemOperationErrors.WithLabelValues("unknown", "move")
	beforeScratch := testutil.ToFloat64(scratchErrors)
	beforeUnknown := testutil.ToFloat64(unknownErrors)

	if err := Move(filepath.Join(scratch, "missing"), filepath.Join(scratch, "dst")); err == nil {
		t.Fatal("Expected error moving a missing file")
	}

	if got := testutil.ToFloat64(scratchErrors) - beforeScratch; got != 1 {
		t.Errorf("Expected one scratch move error, got %v", got)
	}
	if got := testutil.ToFloat64(unknownErrors) - beforeUnknown; got != 0 {
		t.Errorf("Expected no unknown-volume errors, got %v", got)
	}
}

func TestIsCrossDevice(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"exdev", &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}, true},
		{"enoent", &os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.ENOENT}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCrossDevice(tt.err); got != tt.want {
				t.Errorf("isCrossDevice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, "payload")

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile failed: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "payload" {
		t.Errorf("Expected 'payload', got %q", data)
	}
}

func TestAtomicCopyReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "output.mp4")
	dst := filepath.Join(dir, "published", "merged_video_x.mp4")

	writeFile(t, src, "first")
	if _, err := AtomicCopy(src, dst); err != nil {
		t.Fatalf("first AtomicCopy failed: %v", err)
	}

	writeFile(t, src, "second")
	n, err := AtomicCopy(src, dst)
	if err != nil {
		t.Fatalf("second AtomicCopy failed: %v", err)
	}
	if n != int64(len("second")) {
		t.Errorf("Expected %d bytes copied, got %d", len("second"), n)
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly one published file, got %d", len(entries))
	}

	data, _ := os.ReadFile(dst)
	if string(data) != "second" {
		t.Errorf("Expected replaced content 'second', got %q", data)
	}
}

func TestAtomicCopyMissingSourceLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	dstDir := filepath.Join(dir, "published")

	if _, err := AtomicCopy(filepath.Join(dir, "missing"), filepath.Join(dstDir, "a.mp4")); err == nil {
		t.Fatal("Expected error for missing source")
	}

	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 0 {
		t.Errorf("Expected no leftover temp files, found %d", len(entries))
	}
}

func TestRemoveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "job")
	if err := MkdirAll(dir); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	writeFile(t, filepath.Join(dir, "input_000.mp4"), "x")

	if err := RemoveAll(dir); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Expected directory to be removed")
	}

	if err := RemoveAll(dir); err != nil {
		t.Errorf("Expected RemoveAll on missing path to succeed, got %v", err)
	}
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "12345")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub", "b"), "123")

	size, err := DirSize(dir)
	if err != nil {
		t.Fatalf("DirSize failed: %v", err)
	}
	if size != 8 {
		t.Errorf("Expected size 8, got %d", size)
	}
}

func TestScratchUsage(t *testing.T) {
	root := t.TempDir()
	for _, job := range []string{"job-a", "job-b"} {
		if err := os.Mkdir(filepath.Join(root, job), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(root, job, "output.mp4"), "1234")
	}

	stats, err := ScratchProvider(root).ScratchStats()
	if err != nil {
		t.Fatalf("ScratchStats failed: %v", err)
	}
	if stats.Jobs != 2 {
		t.Errorf("Expected 2 jobs, got %d", stats.Jobs)
	}
	if stats.Bytes != 8 {
		t.Errorf("Expected 8 bytes, got %d", stats.Bytes)
	}
}

func TestScratchUsageMissingRoot(t *testing.T) {
	stats, err := ScratchUsage(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Expected no error for missing root, got %v", err)
	}
	if stats.Jobs != 0 || stats.Bytes != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}
