// Package staging receives uploaded files from a multipart request body and
// moves them into a job's private working directory.
//
// Receive spools each file part to an anonymous name under a spool directory
// as it streams in, recording submission order. Stage then relocates the
// spooled files to input_000<ext>, input_001<ext>, ... inside the job's
// WorkDir. Client filenames are kept for logging only and never reach a path.
package staging
