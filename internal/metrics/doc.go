// Package metrics provides Prometheus instrumentation for the clipmerge service.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "clipmerge_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of requests currently being processed
//
// ## Merge Job Metrics
//
//   - MergeJobsTotal: Counter of jobs by terminal outcome ("done" or error kind)
//   - MergeJobsInProgress: Gauge of jobs not yet terminal
//   - MergeJobDuration: Histogram of end-to-end job time
//   - MergeStageDuration: Histogram per stage (staging, transcoding, publishing, cleanup)
//   - MergeInputsPerJob: Histogram of submitted clip counts
//   - CleanupFailuresTotal: Counter of working directories that could not be removed
//
// ## Transcoder Metrics
//
//   - TranscoderJobsTotal: Counter of engine runs by kind (merge/convert) and status
//   - TranscoderJobDuration: Histogram of engine run time by kind
//   - TranscoderJobsInProgress: Gauge of running engine processes
//   - TranscoderSlotWait: Histogram of time spent waiting for a free engine slot
//
// ## Publisher Metrics
//
//   - PublishTotal, PublishDuration, PublishBytesTotal by backend
//
// ## Filesystem Metrics
//
//   - FilesystemOperationDuration / FilesystemOperationErrors by volume and operation
//   - FilesystemCrossDeviceMoves: moves that fell back to copy
//   - ScratchDirBytes / ScratchDirJobs: updated by [Collector]
//
// # Usage
//
// Mount promhttp.Handler() on the metrics port:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Failure rate by kind:
//
//	sum(rate(clipmerge_merge_jobs_total{outcome!="done"}[5m])) by (outcome)
package metrics
