package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"clipmerge/internal/startup"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	h := &Handlers{}
	w := httptest.NewRecorder()
	h.GetVersion(w, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Expected Cache-Control: no-cache, got %q", cc)
	}

	var info startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected Go version %q, got %q", runtime.Version(), info.GoVersion)
	}
}
