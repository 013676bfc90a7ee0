// Package transcoder runs the external media engine (ffmpeg) and reads stream
// information back with ffprobe.
//
// It supports:
//   - Merging N staged clips through a filtergraph.GraphSpec into one MP4
//   - Single-file transcodes for the audio converter
//   - Stream inspection (dimensions, frame rate, codecs, duration)
//
// Every run is bounded by a shared semaphore so that concurrent jobs cannot
// oversubscribe the host. A merge is started with Start and reports exactly
// one terminal Outcome; failures carry the engine's stderr diagnostic in an
// *EngineError wrapped as a transcode-kind *job.Error.
package transcoder
