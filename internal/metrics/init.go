package metrics

// Outcome labels used by MergeJobsTotal besides "done".
var mergeOutcomes = []string{"done", "parse", "no_assets", "staging_io", "transcode", "publish", "unknown"}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics(publishBackend string) {
	for _, outcome := range mergeOutcomes {
		MergeJobsTotal.WithLabelValues(outcome)
	}

	for _, stage := range []string{"staging", "transcoding", "publishing", "cleanup"} {
		MergeStageDuration.WithLabelValues(stage)
	}

	for _, kind := range []string{"merge", "convert"} {
		TranscoderJobsTotal.WithLabelValues(kind, "success")
		TranscoderJobsTotal.WithLabelValues(kind, "error")
		TranscoderJobDuration.WithLabelValues(kind)
	}

	PublishTotal.WithLabelValues(publishBackend, "success")
	PublishTotal.WithLabelValues(publishBackend, "error")
	PublishDuration.WithLabelValues(publishBackend)
	PublishBytesTotal.WithLabelValues(publishBackend)

	for _, vol := range []string{"scratch", "output", "unknown"} {
		for _, op := range []string{"move", "copy", "remove", "mkdir"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	ConversionDuration.WithLabelValues("image")
	ConversionDuration.WithLabelValues("audio")
}

// SetAppInfo records build information.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
