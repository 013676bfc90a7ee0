package memory

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"clipmerge/internal/logging"
	"clipmerge/internal/metrics"

	"github.com/dustin/go-humanize"
)

// Config holds memory monitor configuration
type Config struct {
	// LimitBytes is the budget usage is measured against. Zero means the
	// current GOMEMLIMIT, if any.
	LimitBytes int64

	// ResumeMark is the usage ratio below which a paused monitor resumes.
	ResumeMark float64

	// PauseMark is the usage ratio at which new in-process decodes wait.
	PauseMark float64

	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for memory management
func DefaultConfig() Config {
	return Config{
		ResumeMark:    0.7,
		PauseMark:     0.85,
		CheckInterval: 5 * time.Second,
	}
}

// Monitor samples heap usage and pauses memory-heavy work near the limit.
// With no limit it never pauses.
type Monitor struct {
	config   Config
	limit    int64
	sample   func() uint64
	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	current uint64
	paused  bool
	resumed chan struct{}
}

// NewMonitor creates a new memory monitor
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if l := debug.SetMemoryLimit(-1); l > 0 && l < 1<<62 {
			limit = l
		}
	}
	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	} else {
		logging.Info("Memory monitor budget: %s", humanize.IBytes(uint64(limit)))
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		sample:   heapAlloc,
		stopChan: make(chan struct{}),
		resumed:  make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling. It is a no-op without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(m.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop stops sampling and releases any waiters.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) check() {
	alloc := m.sample()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = alloc

	switch {
	case !m.paused && usage >= m.config.PauseMark:
		logging.Warn("Memory critical (%.1f%% of limit), pausing image conversions", usage*100)
		m.paused = true
		metrics.MemoryPaused.Set(1)
		go runtime.GC()
	case m.paused && usage < m.config.ResumeMark:
		logging.Info("Memory recovered (%.1f%% of limit), resuming image conversions", usage*100)
		m.paused = false
		metrics.MemoryPaused.Set(0)
		close(m.resumed)
		m.resumed = make(chan struct{})
	}
}

// Wait blocks while the monitor is paused.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.RLock()
	paused, resumed := m.paused, m.resumed
	m.mu.RUnlock()
	if !paused {
		return nil
	}

	select {
	case <-resumed:
		return nil
	case <-m.stopChan:
		return fmt.Errorf("memory monitor stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Check is a readiness probe: it fails while the monitor is paused.
func (m *Monitor) Check() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.paused {
		return fmt.Errorf("heap at %s of %s limit",
			humanize.IBytes(m.current), humanize.IBytes(uint64(m.limit)))
	}
	return nil
}

// Usage returns the last sampled usage ratio, or 0 without a limit.
func (m *Monitor) Usage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}
