package staging

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"clipmerge/internal/filesystem"
	"clipmerge/internal/job"
	"clipmerge/internal/logging"
	"clipmerge/internal/mediatypes"

	"github.com/google/uuid"
)

// maxValueSize bounds a non-file form field.
const maxValueSize = 64 << 10

// Upload is the parsed content of one multipart request.
type Upload struct {
	// Assets holds the file parts of the requested field in submission order.
	Assets []job.UploadedAsset
	// Values holds the last value of each non-file field.
	Values map[string]string
}

// Value returns the named form value, or def when it is absent or blank.
func (u *Upload) Value(name, def string) string {
	if v := strings.TrimSpace(u.Values[name]); v != "" {
		return v
	}
	return def
}

// Discard removes every spooled file that has not been staged.
func (u *Upload) Discard() {
	discard(u.Assets)
}

// Receive reads every part of mr. File parts named field are spooled under
// spoolDir; file parts under other names are drained and dropped. Any read
// or write failure removes what was already spooled and returns a
// parse-kind error.
func Receive(mr *multipart.Reader, field, spoolDir string) (*Upload, error) {
	up := &Upload{Values: make(map[string]string)}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return up, nil
		}
		if err != nil {
			up.Discard()
			return nil, job.ParseError(err)
		}

		err = receivePart(up, part, field, spoolDir)
		part.Close()
		if err != nil {
			up.Discard()
			return nil, job.ParseError(err)
		}
	}
}

func receivePart(up *Upload, part *multipart.Part, field, spoolDir string) error {
	name := part.FormName()

	if part.FileName() == "" {
		data, err := io.ReadAll(io.LimitReader(part, maxValueSize+1))
		if err != nil {
			return fmt.Errorf("reading field %q: %w", name, err)
		}
		if len(data) > maxValueSize {
			return fmt.Errorf("field %q is too large", name)
		}
		up.Values[name] = string(data)
		return nil
	}

	if name != field {
		_, err := io.Copy(io.Discard, part)
		return err
	}

	if err := filesystem.MkdirAll(spoolDir); err != nil {
		return err
	}

	path := filepath.Join(spoolDir, "upload_"+uuid.NewString())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating spool file: %w", err)
	}

	_, copyErr := io.Copy(f, part)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(path)
		return fmt.Errorf("receiving %q: %w", part.FileName(), err)
	}

	up.Assets = append(up.Assets, job.UploadedAsset{
		TempPath:      path,
		OriginalName:  part.FileName(),
		SequenceIndex: len(up.Assets),
	})
	return nil
}

// StagedName is the file name input i receives inside the working directory.
func StagedName(i int, originalName string) string {
	return fmt.Sprintf("input_%03d%s", i, mediatypes.StagedExtension(originalName))
}

// Stage moves assets into j.WorkDir in the given order and records them on
// the job. An empty list fails with a no-assets error before anything is
// created on disk. When a move fails the spooled files not yet moved are
// removed; files already moved stay in WorkDir for the job's cleanup.
func Stage(j *job.MergeJob, assets []job.UploadedAsset) error {
	if len(assets) == 0 {
		return job.NoAssetsError()
	}

	if err := filesystem.MkdirAll(j.WorkDir); err != nil {
		discard(assets)
		return job.StagingIOError(err)
	}

	staged := make([]job.UploadedAsset, 0, len(assets))
	for i, a := range assets {
		dst := filepath.Join(j.WorkDir, StagedName(i, a.OriginalName))
		if err := filesystem.Move(a.TempPath, dst); err != nil {
			discard(assets[i:])
			j.Assets = staged
			return job.StagingIOError(err)
		}
		staged = append(staged, job.UploadedAsset{
			TempPath:      dst,
			OriginalName:  a.OriginalName,
			SequenceIndex: i,
		})
	}

	j.Assets = staged
	return nil
}

func discard(assets []job.UploadedAsset) {
	for _, a := range assets {
		if err := os.Remove(a.TempPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove spooled upload %s: %v", a.TempPath, err)
		}
	}
}
