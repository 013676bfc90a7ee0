package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"clipmerge/internal/metrics"
)

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are paths that should not be recorded
	SkipPaths []string
	// FilePrefixes are collapsed to "<prefix>{file}" so that every
	// published or converted file does not become its own label.
	FilePrefixes []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths:    []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
		FilePrefixes: []string{"/merged/", "/uploads/image/", "/uploads/audio/"},
	}
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newMetricsResponseWriter(w)
			start := time.Now()
			next.ServeHTTP(wrapped, r)

			path := config.normalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath bounds label cardinality. File routes collapse to their
// prefix and anything deeper than three segments is truncated.
func (c MetricsConfig) normalizePath(path string) string {
	for _, p := range c.FilePrefixes {
		if strings.HasPrefix(path, p) {
			return p + "{file}"
		}
	}

	parts := strings.Split(path, "/")
	if len(parts) > 4 {
		return strings.Join(parts[:4], "/") + "/{path}"
	}
	return path
}
