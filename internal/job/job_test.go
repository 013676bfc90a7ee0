package job

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	root := t.TempDir()
	j := New(root)

	if j.ID == "" {
		t.Fatal("Expected job ID to be generated")
	}
	if j.Status() != StatusStaging {
		t.Errorf("Expected initial status staging, got %s", j.Status())
	}
	if j.WorkDir != filepath.Join(root, j.ID) {
		t.Errorf("Expected WorkDir under scratch root keyed by ID, got %s", j.WorkDir)
	}
	if j.OutputPath != filepath.Join(j.WorkDir, OutputName) {
		t.Errorf("Expected output inside WorkDir, got %s", j.OutputPath)
	}
	if _, err := os.Stat(j.WorkDir); !os.IsNotExist(err) {
		t.Error("New should not create the working directory")
	}
}

func TestNewUniqueWorkDirs(t *testing.T) {
	root := t.TempDir()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		j := New(root)
		if seen[j.WorkDir] {
			t.Fatalf("Duplicate working directory %s", j.WorkDir)
		}
		seen[j.WorkDir] = true
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []Status
		wantErr bool
	}{
		{"happy path", []Status{StatusTranscoding, StatusPublishing, StatusDone}, false},
		{"fail from staging", []Status{StatusFailed}, false},
		{"fail from transcoding", []Status{StatusTranscoding, StatusFailed}, false},
		{"fail from publishing", []Status{StatusTranscoding, StatusPublishing, StatusFailed}, false},
		{"skip transcoding", []Status{StatusPublishing}, true},
		{"skip to done", []Status{StatusDone}, true},
		{"backwards", []Status{StatusTranscoding, StatusStaging}, true},
		{"self", []Status{StatusStaging}, true},
		{"leave done", []Status{StatusTranscoding, StatusPublishing, StatusDone, StatusFailed}, true},
		{"leave failed", []Status{StatusFailed, StatusTranscoding}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(t.TempDir())
			var err error
			for _, s := range tt.path {
				if err = j.Transition(s); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transition error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestFailIsNoOpWhenTerminal(t *testing.T) {
	j := New(t.TempDir())
	for _, s := range []Status{StatusTranscoding, StatusPublishing, StatusDone} {
		if err := j.Transition(s); err != nil {
			t.Fatal(err)
		}
	}

	j.Fail()

	if j.Status() != StatusDone {
		t.Errorf("Expected Done to be kept, got %s", j.Status())
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusStaging:     "staging",
		StatusTranscoding: "transcoding",
		StatusPublishing:  "publishing",
		StatusDone:        "done",
		StatusFailed:      "failed",
		Status(42):        "status(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestInputPathsPreserveOrder(t *testing.T) {
	j := New(t.TempDir())
	j.Assets = []UploadedAsset{
		{TempPath: "/w/input_000.mp4", SequenceIndex: 0},
		{TempPath: "/w/input_001.mov", SequenceIndex: 1},
		{TempPath: "/w/input_002.mkv", SequenceIndex: 2},
	}

	got := j.InputPaths()
	want := []string{"/w/input_000.mp4", "/w/input_001.mov", "/w/input_002.mkv"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("InputPaths() = %v, want %v", got, want)
	}
}

func TestPublicID(t *testing.T) {
	created := time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC)
	j := newWithClock(t.TempDir(), func() time.Time { return created })

	id := j.PublicID()

	if !strings.HasPrefix(id, "merged_video_2024_03_09T14_05_07_123Z_") {
		t.Errorf("Unexpected public ID prefix: %s", id)
	}
	if !regexp.MustCompile(`^[A-Za-z0-9_]+$`).MatchString(id) {
		t.Errorf("Public ID contains unexpected characters: %s", id)
	}
	if id != j.PublicID() {
		t.Error("PublicID should be stable for the same job")
	}
}

func TestPublicIDDistinctForSameInstant(t *testing.T) {
	created := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	clock := func() time.Time { return created }
	a := newWithClock(t.TempDir(), clock)
	b := newWithClock(t.TempDir(), clock)

	if a.PublicID() == b.PublicID() {
		t.Errorf("Expected distinct public IDs for jobs created at the same instant, got %s", a.PublicID())
	}
}

func TestCleanupRequiresTerminal(t *testing.T) {
	j := New(t.TempDir())
	if err := os.MkdirAll(j.WorkDir, 0o700); err != nil {
		t.Fatal(err)
	}

	if err := j.Cleanup(); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("Expected ErrNotTerminal, got %v", err)
	}
	if _, err := os.Stat(j.WorkDir); err != nil {
		t.Error("Working directory should survive a rejected cleanup")
	}
}

func TestCleanupRemovesWorkDirOnce(t *testing.T) {
	j := New(t.TempDir())
	if err := os.MkdirAll(j.WorkDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(j.OutputPath, []byte("video"), 0o600); err != nil {
		t.Fatal(err)
	}
	j.Fail()

	if err := j.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(j.WorkDir); !os.IsNotExist(err) {
		t.Error("Expected working directory to be removed")
	}

	// A directory recreated after cleanup must not be touched by a second call.
	if err := os.MkdirAll(j.WorkDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := j.Cleanup(); err != nil {
		t.Fatalf("Second cleanup returned error: %v", err)
	}
	if _, err := os.Stat(j.WorkDir); err != nil {
		t.Error("Second Cleanup call should not remove anything")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	diag := errors.New("Invalid data found when processing input")

	tests := []struct {
		name       string
		err        error
		kind       Kind
		status     int
		wantSubstr string
	}{
		{"parse", ParseError(errors.New("unexpected EOF")), KindParse, http.StatusBadRequest, "unexpected EOF"},
		{"no assets", NoAssetsError(), KindNoAssets, http.StatusBadRequest, "no video files uploaded"},
		{"staging", StagingIOError(errors.New("disk full")), KindStagingIO, http.StatusInternalServerError, "disk full"},
		{"transcode", TranscodeError(diag), KindTranscode, http.StatusInternalServerError, "Invalid data found"},
		{"publish", PublishError(errors.New("quota exceeded")), KindPublish, http.StatusInternalServerError, "quota exceeded"},
		{"wrapped", fmt.Errorf("outer: %w", TranscodeError(diag)), KindTranscode, http.StatusInternalServerError, "failed to merge videos"},
		{"foreign", errors.New("other"), KindUnknown, http.StatusInternalServerError, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := KindOf(tt.err)
			if kind != tt.kind {
				t.Errorf("KindOf() = %s, want %s", kind, tt.kind)
			}
			if kind.HTTPStatus() != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", kind.HTTPStatus(), tt.status)
			}
			if !strings.Contains(tt.err.Error(), tt.wantSubstr) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := StagingIOError(sentinel)
	if !errors.Is(err, sentinel) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
}
