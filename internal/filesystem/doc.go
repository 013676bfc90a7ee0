/*
Package filesystem provides the file operations the merge pipeline relies on,
instrumented with per-volume Prometheus metrics.

# Operations

  - Move: rename with a copy-and-remove fallback when the upload spool and the
    scratch root sit on different devices (EXDEV)
  - AtomicCopy: copy through a temporary sibling and rename, used when
    publishing to the local asset store so that re-publishing the same
    identifier replaces rather than duplicates the artifact
  - MkdirAll / RemoveAll: job working directory lifecycle
  - DirSize / ScratchUsage: scratch-space accounting for the metrics collector

# Volume labels

Metrics are labeled with a volume name resolved by longest-prefix match:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "scratch": cfg.ScratchDir,
	    "output":  cfg.OutputDir,
	}))

Paths outside every configured volume are labeled "unknown".
*/
package filesystem
