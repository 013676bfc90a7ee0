// Package memory sizes the Go heap for containers and applies backpressure
// to in-process image decodes.
//
// ConfigureFromEnv derives GOMEMLIMIT from MEMORY_LIMIT (the container limit,
// usually passed through the Kubernetes Downward API) so the garbage
// collector works harder before the kernel OOM killer steps in. Video and
// audio work runs in separate ffmpeg processes and is outside this budget,
// which is why the default heap share is lower than a pure-Go service would
// use.
//
// Monitor samples heap usage against the same limit. Above PauseMark it
// pauses: Wait blocks new image conversions and Check fails the readiness
// probe so load balancers drain traffic. Below ResumeMark it resumes.
package memory
