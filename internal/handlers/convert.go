package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"clipmerge/internal/convert"
	"clipmerge/internal/job"
	"clipmerge/internal/mediatypes"
	"clipmerge/internal/staging"
)

// ConvertResponse is the body of a successful conversion.
type ConvertResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
	Format  string `json:"format"`
}

// ConvertImage converts the uploaded "image" part to the requested "format",
// optionally resizing to "width" and/or "height".
func (h *Handlers) ConvertImage(w http.ResponseWriter, r *http.Request) {
	up, ok := h.receiveSingle(w, r, "image", mediatypes.FileTypeImage)
	if !ok {
		return
	}
	defer up.Discard()

	width, err := intValue(up, "width")
	if err != nil {
		writeJobError(w, err)
		return
	}
	height, err := intValue(up, "height")
	if err != nil {
		writeJobError(w, err)
		return
	}

	if h.imageGate != nil {
		if err := h.imageGate.Wait(r.Context()); err != nil {
			writeJSONError(w, "server is under memory pressure, try again later", http.StatusServiceUnavailable)
			return
		}
	}

	if err := h.conversions.Acquire(r.Context(), 1); err != nil {
		writeJSONError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	defer h.conversions.Release(1)

	res, err := h.images.Convert(r.Context(), up.Assets[0].TempPath, convert.ImageOptions{
		Format: up.Value("format", convert.DefaultImageFormat),
		Width:  width,
		Height: height,
	})
	if err != nil {
		writeJobError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ConvertResponse{
		Message: "Image converted successfully!",
		URL:     "/" + path.Join(convert.ImageDir, res.Name),
		Format:  res.Format,
	})
}

// ConvertAudio converts the uploaded "audio" part to the requested "format".
func (h *Handlers) ConvertAudio(w http.ResponseWriter, r *http.Request) {
	up, ok := h.receiveSingle(w, r, "audio", mediatypes.FileTypeAudio)
	if !ok {
		return
	}
	defer up.Discard()

	res, err := h.audio.Convert(r.Context(), up.Assets[0].TempPath, up.Value("format", convert.DefaultAudioFormat))
	if err != nil {
		writeJobError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ConvertResponse{
		Message: "Audio converted successfully!",
		URL:     "/" + path.Join(convert.AudioDir, res.Name),
		Format:  res.Format,
	})
}

// receiveSingle is receive for endpoints that take exactly one file of the
// given type. Names without an extension are left to the converter to sniff.
func (h *Handlers) receiveSingle(w http.ResponseWriter, r *http.Request, field string, want mediatypes.FileType) (*staging.Upload, bool) {
	up, ok := h.receive(w, r, field)
	if !ok {
		return nil, false
	}
	if len(up.Assets) != 1 {
		up.Discard()
		msg := fmt.Sprintf("expected exactly one %s file, got %d", field, len(up.Assets))
		if len(up.Assets) == 0 {
			msg = fmt.Sprintf("no %s file uploaded", field)
		}
		writeJSONError(w, msg, http.StatusBadRequest)
		return nil, false
	}
	name := up.Assets[0].OriginalName
	if ext := mediatypes.Ext(name); ext != "" && mediatypes.GetFileType(ext) != want {
		up.Discard()
		writeJSONError(w, fmt.Sprintf("%s is not %s %s file", name, article(string(want)), want), http.StatusBadRequest)
		return nil, false
	}
	return up, true
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func intValue(up *staging.Upload, name string) (int, error) {
	raw := up.Value(name, "")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &job.Error{Kind: job.KindParse, Msg: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return n, nil
}
