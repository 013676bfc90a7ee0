// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// A .env file in the working directory is read first when present; variables
// already set in the environment win. The following variables are supported:
//
//   - PORT: HTTP server port (default: 5000)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SCRATCH_DIR: Root for upload spooling and per-job working directories (default: $TMPDIR/clipmerge)
//   - OUTPUT_DIR: Root of the statically served output tree (default: ./public)
//   - FFMPEG_PATH / FFPROBE_PATH: Engine binaries (default: ffmpeg / ffprobe on PATH)
//   - PUBLISH_BACKEND: cloudinary or local (default: cloudinary)
//   - CLOUDINARY_URL: cloudinary://<key>:<secret>@<cloud>, required for the cloudinary backend
//   - PUBLIC_BASE_URL: Absolute http(s) URL prefix for locally published merges, required for the local backend
//   - ALLOWED_ORIGINS: Comma-separated CORS allow-list
//   - MAX_UPLOAD_SIZE: Request body limit, e.g. 500MB or 2GiB (default: 2GiB)
//   - MAX_CONCURRENT_TRANSCODES: Engine process limit (default: GOMAXPROCS)
//   - MAX_CONCURRENT_CONVERSIONS: Image conversion limit (default: 1.5 x GOMAXPROCS)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// LoadConfig creates and write-tests every directory the service needs:
// SCRATCH_DIR/jobs, SCRATCH_DIR/spool, and the uploads/image, uploads/audio
// and merged subdirectories of OUTPUT_DIR.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogEngineInit]: ffmpeg/ffprobe availability and slot count
//   - [LogPublisherInit]: Selected publish backend
//   - [LogHTTPRoutes]: Routes grouped as merge, convert, files and ops
//   - [LogServerStarted]: Ready banner with the merge, convert and file URLs
//   - [BeginShutdown]: Returns a [Shutdown] that logs each teardown step
//     with its duration and counts failures
package startup
