package handlers

import (
	"net/http"
	"runtime"
	"time"

	"clipmerge/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Failing readiness checks, by name
	Checks map[string]string `json:"checks,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	failures := h.runChecks()

	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        len(failures) == 0,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if len(failures) > 0 {
		response.Status = statusDegraded
		response.Checks = failures
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONStatus(w, "alive")
}

// ReadinessCheck returns 200 only when every dependency check passes
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if failures := h.runChecks(); len(failures) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]interface{}{
			"status": "not_ready",
			"checks": failures,
		})
		return
	}
	writeJSONStatus(w, "ready")
}

func (h *Handlers) runChecks() map[string]string {
	var failures map[string]string
	for _, c := range h.checks {
		if err := c.Check(); err != nil {
			if failures == nil {
				failures = make(map[string]string)
			}
			failures[c.Name] = err.Error()
		}
	}
	return failures
}
