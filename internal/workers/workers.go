package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Environment variables that override the computed counts.
const (
	TranscodeEnv  = "MAX_CONCURRENT_TRANSCODES"
	ConversionEnv = "MAX_CONCURRENT_CONVERSIONS"
)

// Count returns the number of concurrent workers for a task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// A positive integer in envVar overrides the calculation.
func Count(envVar string, multiplier float64, limit int) int {
	if override := os.Getenv(envVar); envVar != "" && override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU), such as
// engine transcodes.
func ForCPU(envVar string, limit int) int {
	return Count(envVar, 1.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU), such as
// decode-resize-encode image conversions that also read and write files.
func ForMixed(envVar string, limit int) int {
	return Count(envVar, 1.5, limit)
}
