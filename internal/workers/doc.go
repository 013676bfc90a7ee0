/*
Package workers sizes the concurrency limits for engine transcodes and image
conversions in containerized environments.

When running in a container the number of usable CPUs may be limited by cgroup
constraints. Go 1.19+ sets GOMAXPROCS from those limits, while runtime.NumCPU()
still returns the host's CPU count. The helpers here derive counts from
GOMAXPROCS:

	// 1 per CPU, at most 8
	slots := workers.ForCPU(workers.TranscodeEnv, 8)

	// 1.5 per CPU, at most 8
	slots := workers.ForMixed(workers.ConversionEnv, 8)

# Environment Variable Override

Each call names the environment variable that overrides it. A positive integer
replaces the computed value (still capped by the limit):

	env:
	- name: MAX_CONCURRENT_TRANSCODES
	  value: "2"

Non-numeric, zero or negative values are ignored.
*/
package workers
