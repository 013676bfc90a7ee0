package startup

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"clipmerge/internal/logging"
	"clipmerge/internal/workers"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Default CORS allow-list.
var defaultAllowedOrigins = []string{
	"https://converter-frontend-rosy.vercel.app",
	"http://localhost:3000",
	"http://localhost:3001",
}

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogStaticFiles  bool
	LogHealthChecks bool

	ScratchDir    string
	OutputDir     string
	FFmpegPath    string
	FFprobePath   string
	MaxUploadSize int64

	PublishBackend string
	CloudinaryURL  string
	PublicBaseURL  string
	AllowedOrigins []string

	MaxConcurrentTranscodes  int
	MaxConcurrentConversions int

	// Derived paths
	JobsDir   string
	SpoolDir  string
	ImageDir  string
	AudioDir  string
	MergedDir string
}

// LoadConfig loads and validates configuration from environment variables.
// A .env file in the working directory, when present, is loaded first and
// never overrides variables that are already set.
func LoadConfig() (*Config, error) {
	envFileErr := godotenv.Load()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	if envFileErr == nil {
		logging.Info("  Loaded .env file")
	} else if !os.IsNotExist(envFileErr) {
		logging.Warn("  Failed to load .env file: %v", envFileErr)
	}

	config, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	logging.Info("  PORT:                       %s", config.Port)
	logging.Info("  METRICS_PORT:               %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:            %v", config.MetricsEnabled)
	logging.Info("  SCRATCH_DIR:                %s", config.ScratchDir)
	logging.Info("  OUTPUT_DIR:                 %s", config.OutputDir)
	logging.Info("  FFMPEG_PATH:                %s", config.FFmpegPath)
	logging.Info("  FFPROBE_PATH:               %s", config.FFprobePath)
	logging.Info("  PUBLISH_BACKEND:            %s", config.PublishBackend)
	logging.Info("  CLOUDINARY_URL:             %s", redact(config.CloudinaryURL))
	logging.Info("  PUBLIC_BASE_URL:            %s", config.PublicBaseURL)
	logging.Info("  ALLOWED_ORIGINS:            %s", strings.Join(config.AllowedOrigins, ", "))
	logging.Info("  MAX_UPLOAD_SIZE:            %s", humanize.IBytes(uint64(config.MaxUploadSize)))
	logging.Info("  MAX_CONCURRENT_TRANSCODES:  %d", config.MaxConcurrentTranscodes)
	logging.Info("  MAX_CONCURRENT_CONVERSIONS: %d", config.MaxConcurrentConversions)
	logging.Info("  LOG_STATIC_FILES:           %v", config.LogStaticFiles)
	logging.Info("  LOG_HEALTH_CHECKS:          %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:                  %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	for _, dir := range []struct{ path, name string }{
		{config.JobsDir, "scratch"},
		{config.SpoolDir, "upload spool"},
		{config.ImageDir, "image output"},
		{config.AudioDir, "audio output"},
		{config.MergedDir, "merged output"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory error: %w", dir.name, err)
		}
		if err := testWriteAccess(dir.path); err != nil {
			return nil, fmt.Errorf("%s directory is not writable: %w", dir.name, err)
		}
		logging.Info("  [OK] %-14s %s", dir.name+":", dir.path)
	}

	return config, nil
}

// configFromEnv reads and validates every variable without touching disk.
func configFromEnv() (*Config, error) {
	scratchDir := getEnv("SCRATCH_DIR", filepath.Join(os.TempDir(), "clipmerge"))
	outputDir := getEnv("OUTPUT_DIR", "./public")

	maxUpload, err := getEnvBytes("MAX_UPLOAD_SIZE", 2<<30)
	if err != nil {
		return nil, err
	}

	scratchDir, err = filepath.Abs(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scratch directory path: %w", err)
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}

	config := &Config{
		Port:            getEnv("PORT", "5000"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		LogStaticFiles:  getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks: getEnvBool("LOG_HEALTH_CHECKS", true),

		ScratchDir:    scratchDir,
		OutputDir:     outputDir,
		FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:   getEnv("FFPROBE_PATH", "ffprobe"),
		MaxUploadSize: maxUpload,

		PublishBackend: strings.ToLower(getEnv("PUBLISH_BACKEND", "cloudinary")),
		CloudinaryURL:  os.Getenv("CLOUDINARY_URL"),
		PublicBaseURL:  strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", defaultAllowedOrigins),

		MaxConcurrentTranscodes:  workers.ForCPU(workers.TranscodeEnv, 0),
		MaxConcurrentConversions: workers.ForMixed(workers.ConversionEnv, 0),

		JobsDir:   filepath.Join(scratchDir, "jobs"),
		SpoolDir:  filepath.Join(scratchDir, "spool"),
		ImageDir:  filepath.Join(outputDir, "uploads", "image"),
		AudioDir:  filepath.Join(outputDir, "uploads", "audio"),
		MergedDir: filepath.Join(outputDir, "merged"),
	}

	switch config.PublishBackend {
	case "cloudinary":
		if config.CloudinaryURL == "" {
			return nil, fmt.Errorf("CLOUDINARY_URL is required when PUBLISH_BACKEND=cloudinary")
		}
	case "local":
		if err := checkBaseURL(config.PublicBaseURL); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown PUBLISH_BACKEND %q (want cloudinary or local)", config.PublishBackend)
	}

	return config, nil
}

// checkBaseURL requires an absolute http(s) URL so locally published merges
// get a link a client can follow without knowing this server's address.
func checkBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required when PUBLISH_BACKEND=local")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid PUBLIC_BASE_URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PUBLIC_BASE_URL %q must be an absolute http or https URL", raw)
	}
	return nil
}

// redact hides the credentials of a cloudinary:// URL.
func redact(raw string) string {
	if raw == "" {
		return "(not set)"
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "(set)"
	}
	return u.Scheme + "://***@" + u.Host
}

// LogEngineInit checks that the configured engine binaries run.
func LogEngineInit(ffmpegPath, ffprobePath string, slots int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("ENGINE INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	for _, bin := range []string{ffmpegPath, ffprobePath} {
		if version, err := checkEngine(bin); err != nil {
			logging.Warn("  %s check failed: %v", bin, err)
			logging.Warn("  Merges and audio conversions will fail until it is installed")
		} else {
			logging.Info("  [OK] %s", version)
		}
	}
	logging.Info("  Concurrent engine processes: %d", slots)
}

// LogPublisherInit logs the selected publish backend.
func LogPublisherInit(backend string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PUBLISHER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Publishing merged videos to %s", backend)
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
      _ _                                   
  ___| (_)_ __  _ __ ___   ___ _ __ __ _  ___ 
 / __| | | '_ \| '_ ' _ \ / _ \ '__/ _' |/ _ \
| (__| | | |_) | | | | | |  __/ | | (_| |  __/
 \___|_|_| .__/|_| |_| |_|\___|_|  \__, |\___|
         |_|                       |___/      
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")

	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

// checkEngine runs bin -version and returns the first line of its output.
func checkEngine(bin string) (string, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", fmt.Errorf("%s not found", bin)
	}
	logging.Debug("  Engine path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", bin, err)
	}

	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func getEnvBytes(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid %s %q: out of range", key, value)
	}
	return int64(n), nil
}
