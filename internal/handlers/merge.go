package handlers

import (
	"context"
	"net/http"

	"clipmerge/internal/logging"
)

const mergeSuccessMessage = "Videos merged and uploaded successfully!"

// MergeResponse is the body of a successful merge.
type MergeResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// MergeVideos concatenates the uploaded "video" parts in submission order
// and responds with the published URL. The job is detached from the request
// context, so a client that disconnects mid-merge does not abort it.
func (h *Handlers) MergeVideos(w http.ResponseWriter, r *http.Request) {
	up, ok := h.receive(w, r, "video")
	if !ok {
		return
	}
	defer up.Discard()

	logging.Debug("Merge request from %s with %d video part(s)", r.RemoteAddr, len(up.Assets))

	res, err := h.merger.Merge(context.WithoutCancel(r.Context()), up.Assets)
	if err != nil {
		writeJobError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, MergeResponse{Message: mergeSuccessMessage, URL: res.SecureURL})
}
