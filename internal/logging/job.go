package logging

// JobLogger prefixes every line with the owning job's identifier so that
// interleaved output from concurrent merges can be told apart.
type JobLogger struct {
	prefix string
}

// ForJob returns a logger scoped to a single merge job.
func ForJob(jobID string) *JobLogger {
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return &JobLogger{prefix: "[job " + short + "] "}
}

// Debug logs a job-scoped debug message
func (l *JobLogger) Debug(format string, args ...interface{}) {
	logf(LevelDebug, l.prefix, format, args...)
}

// Info logs a job-scoped info message
func (l *JobLogger) Info(format string, args ...interface{}) {
	logf(LevelInfo, l.prefix, format, args...)
}

// Warn logs a job-scoped warning
func (l *JobLogger) Warn(format string, args ...interface{}) {
	logf(LevelWarn, l.prefix, format, args...)
}

// Error logs a job-scoped error
func (l *JobLogger) Error(format string, args ...interface{}) {
	logf(LevelError, l.prefix, format, args...)
}
