// Package handlers provides the HTTP request handlers for the clip merge
// service.
//
// It includes handlers for:
//   - Merging uploaded video clips (POST /merge/videos)
//   - Image and audio conversion (POST /convert/image, /convert/audio)
//   - Health, liveness and readiness probes
//   - Version information and Prometheus metrics
//
// Errors are returned as {"error": "..."} with the status code derived from
// the error's job.Kind.
package handlers
