package job

import (
	"errors"
	"net/http"
)

// Kind classifies a job failure.
type Kind int

const (
	// KindUnknown is an error that did not originate in the pipeline taxonomy.
	KindUnknown Kind = iota
	// KindParse is a malformed multipart body.
	KindParse
	// KindNoAssets means zero video parts were submitted.
	KindNoAssets
	// KindStagingIO is a filesystem failure while relocating an upload.
	KindStagingIO
	// KindTranscode is a terminal failure reported by the transcoding engine.
	KindTranscode
	// KindPublish is a failure uploading to the remote asset store.
	KindPublish
)

// String returns the metric/log label for a kind
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindNoAssets:
		return "no_assets"
	case KindStagingIO:
		return "staging_io"
	case KindTranscode:
		return "transcode"
	case KindPublish:
		return "publish"
	default:
		return "unknown"
	}
}

// HTTPStatus maps a kind to the response status surfaced to the client.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindParse, KindNoAssets:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified job failure. Msg is the human-readable summary shown
// to the client; Err, when present, carries the underlying diagnostic.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var jobErr *Error
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	return KindUnknown
}

// ParseError reports a malformed upload body.
func ParseError(err error) *Error {
	return &Error{Kind: KindParse, Msg: "error parsing the files", Err: err}
}

// NoAssetsError reports a request without any video parts.
func NoAssetsError() *Error {
	return &Error{Kind: KindNoAssets, Msg: "no video files uploaded"}
}

// StagingIOError reports a failed move into the job's working directory.
func StagingIOError(err error) *Error {
	return &Error{Kind: KindStagingIO, Msg: "failed to move video files", Err: err}
}

// TranscodeError reports a terminal engine failure. err should carry the
// engine diagnostic.
func TranscodeError(err error) *Error {
	return &Error{Kind: KindTranscode, Msg: "failed to merge videos", Err: err}
}

// PublishError reports a failed upload. err should carry the store diagnostic.
func PublishError(err error) *Error {
	return &Error{Kind: KindPublish, Msg: "failed to upload merged video", Err: err}
}
