package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Merge job metrics
var (
	MergeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_merge_jobs_total",
			Help: "Total number of merge jobs by terminal outcome",
		},
		[]string{"outcome"}, // "done" or the failing error kind
	)

	MergeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_merge_jobs_in_progress",
			Help: "Number of merge jobs that have not reached a terminal state",
		},
	)

	MergeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipmerge_merge_job_duration_seconds",
			Help:    "End-to-end merge job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)

	MergeStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_merge_stage_duration_seconds",
			Help:    "Duration of each merge pipeline stage in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"}, // "staging", "transcoding", "publishing", "cleanup"
	)

	MergeInputsPerJob = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipmerge_merge_inputs_per_job",
			Help:    "Number of video inputs submitted per merge job",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20},
		},
	)

	CleanupFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipmerge_cleanup_failures_total",
			Help: "Total number of job cleanups that failed to remove the working directory",
		},
	)
)

// Transcoder metrics
var (
	TranscoderJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_transcoder_invocations_total",
			Help: "Total number of transcoding engine invocations",
		},
		[]string{"kind", "status"}, // kind: "merge" or "convert"
	)

	TranscoderJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_transcoder_invocation_duration_seconds",
			Help:    "Transcoding engine run time in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	TranscoderJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_transcoder_invocations_in_progress",
			Help: "Number of transcoding engine processes currently running",
		},
	)

	TranscoderSlotWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clipmerge_transcoder_slot_wait_seconds",
			Help:    "Time spent waiting for a free transcoding slot",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 30, 60, 300},
		},
	)
)

// Publisher metrics
var (
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_publish_total",
			Help: "Total number of artifact uploads by backend and status",
		},
		[]string{"backend", "status"},
	)

	PublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_publish_duration_seconds",
			Help:    "Artifact upload duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	PublishBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_publish_bytes_total",
			Help: "Total bytes uploaded to the asset store",
		},
		[]string{"backend"},
	)
)

// Converter metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_conversions_total",
			Help: "Total number of single-file conversions",
		},
		[]string{"type", "format", "status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_conversion_duration_seconds",
			Help:    "Single-file conversion duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"type"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipmerge_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipmerge_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemCrossDeviceMoves = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipmerge_filesystem_cross_device_moves_total",
			Help: "Total number of moves that fell back to copy because source and target were on different devices",
		},
	)

	ScratchDirBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_scratch_dir_bytes",
			Help: "Total size of the scratch directory in bytes",
		},
	)

	ScratchDirJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_scratch_dir_jobs",
			Help: "Number of job working directories currently present under the scratch root",
		},
	)
)

// Go runtime metrics
var (
	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_go_memory_alloc_bytes",
			Help: "Current Go heap allocation in bytes",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_go_memory_sys_bytes",
			Help: "Total memory obtained from the OS by the Go runtime",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_memory_usage_ratio",
			Help: "Go heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipmerge_memory_paused",
			Help: "1 while image conversions are paused for memory pressure",
		},
	)
)

// AppInfo exposes build information as labels on a constant gauge
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "clipmerge_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
