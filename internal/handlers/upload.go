package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"clipmerge/internal/job"
	"clipmerge/internal/staging"

	"github.com/dustin/go-humanize"
)

// receive parses the multipart body of r, spooling file parts named field.
// On failure it writes the error response and returns false.
func (h *Handlers) receive(w http.ResponseWriter, r *http.Request, field string) (*staging.Upload, bool) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeJobError(w, job.ParseError(err))
		return nil, false
	}

	up, err := staging.Receive(mr, field, h.spoolDir)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, fmt.Sprintf("upload exceeds the %s limit",
				humanize.IBytes(uint64(tooLarge.Limit))), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		writeJobError(w, err)
		return nil, false
	}
	return up, true
}
