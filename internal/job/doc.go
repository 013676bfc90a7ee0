// Package job defines the merge job model shared by every pipeline stage:
// the MergeJob record and its forward-only status machine, the classified
// error taxonomy surfaced to HTTP clients, and the once-only cleanup of a
// job's working directory.
package job
