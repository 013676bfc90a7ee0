// Package convert implements the one-shot image and audio converters that sit
// beside the merge pipeline.
//
// Images are decoded with auto-orientation, optionally resized with Lanczos
// resampling, and re-encoded by github.com/disintegration/imaging. Audio is
// re-encoded by the external engine through the transcoder's single-input
// Transcode. Both write a uniquely named file into their output directory and
// return its name; the HTTP layer turns it into a URL.
package convert
