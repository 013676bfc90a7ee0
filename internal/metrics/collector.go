package metrics

import (
	"runtime"
	"time"

	"clipmerge/internal/logging"
)

// ScratchStats describes what is currently on disk under the scratch root.
type ScratchStats struct {
	Bytes int64
	Jobs  int
}

// ScratchProvider reports scratch-space usage.
type ScratchProvider interface {
	ScratchStats() (ScratchStats, error)
}

// Collector periodically collects and updates metrics
type Collector struct {
	provider ScratchProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider ScratchProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	GoMemAllocBytes.Set(float64(mem.Alloc))
	GoMemSysBytes.Set(float64(mem.Sys))

	if c.provider == nil {
		return
	}

	stats, err := c.provider.ScratchStats()
	if err != nil {
		logging.Warn("Failed to collect scratch directory stats: %v", err)
		return
	}

	ScratchDirBytes.Set(float64(stats.Bytes))
	ScratchDirJobs.Set(float64(stats.Jobs))

	logging.Debug("Metrics collected: scratch_bytes=%d, scratch_jobs=%d", stats.Bytes, stats.Jobs)
}
