// Package pipeline runs one merge job end to end: stage the uploads, build
// the filter graph, run the engine, publish the output and remove the job's
// working directory.
//
// Stages run strictly in sequence on the caller's goroutine. Whatever the
// outcome, the job ends in a terminal status and its working directory is
// removed exactly once before Merge returns.
package pipeline
