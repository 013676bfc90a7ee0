package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"clipmerge/internal/logging"

	"github.com/dustin/go-humanize"
)

// DefaultMemoryRatio is the share of the container limit given to the Go heap.
// ffmpeg processes live outside the heap and need the remainder.
const DefaultMemoryRatio = 0.75

// LimitResult describes how GOMEMLIMIT was configured.
type LimitResult struct {
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configured reports whether a soft memory limit is in effect.
func (r LimitResult) Configured() bool {
	return r.GoMemLimit > 0
}

// ConfigureFromEnv sets the Go soft memory limit from the container limit.
// Call it early in main.
//
// Environment variables:
//   - GOMEMLIMIT: honored as-is by the runtime and only reported here
//   - MEMORY_LIMIT: container limit, e.g. "2147483648" or "2GiB"
//   - MEMORY_RATIO: heap share of MEMORY_LIMIT (default 0.75)
func ConfigureFromEnv() LimitResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		res := LimitResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return res
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return LimitResult{Source: "none"}
	}

	limit, err := humanize.ParseBytes(raw)
	if err != nil || limit == 0 || limit > math.MaxInt64 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return LimitResult{Source: "none"}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s container limit)",
		humanize.IBytes(uint64(goLimit)), ratio*100, humanize.IBytes(limit))

	return LimitResult{
		Source:         "MEMORY_LIMIT",
		ContainerLimit: int64(limit),
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", raw, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}
