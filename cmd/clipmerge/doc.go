// Package main is the entry point for the clip merge service.
//
// The service accepts multipart uploads of video clips, concatenates them in
// submission order with ffmpeg (every clip normalized to 640x360 at 30 fps)
// and publishes the result to Cloudinary or a local directory. It also
// offers one-shot image and audio conversion.
//
// # Startup
//
//  1. GOMEMLIMIT is derived from MEMORY_LIMIT when running in a container
//  2. Configuration is read from the environment (and .env) and every
//     scratch and output directory is created and write-tested
//  3. The engine binaries are checked and the publisher is selected
//  4. Routes, middleware and the optional metrics listener are set up
//
// # Endpoints
//
//	POST /merge/videos      repeated "video" file parts
//	POST /convert/image     "image" file part, optional format, width, height
//	POST /convert/audio     "audio" file part, optional format
//	GET  /uploads/image/... converted images
//	GET  /uploads/audio/... converted audio
//	GET  /merged/...        merged videos (local backend)
//	GET  /health, /livez, /readyz, /version
//
// # Shutdown
//
// On SIGINT or SIGTERM the HTTP server stops accepting connections and waits
// for in-flight requests, then any remaining ffmpeg processes are killed.
package main
