package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"clipmerge/internal/convert"
	"clipmerge/internal/filesystem"
	"clipmerge/internal/handlers"
	"clipmerge/internal/logging"
	"clipmerge/internal/mediatypes"
	"clipmerge/internal/memory"
	"clipmerge/internal/metrics"
	"clipmerge/internal/middleware"
	"clipmerge/internal/pipeline"
	"clipmerge/internal/publisher"
	"clipmerge/internal/startup"
	"clipmerge/internal/transcoder"

	"github.com/gorilla/mux"
)

// shutdownTimeout bounds how long in-flight merges get to finish.
const shutdownTimeout = 5 * time.Minute

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	filesystem.SetDefaultVolumeResolver(volumeResolver(config))

	buildInfo := startup.GetBuildInfo()
	metrics.InitializeMetrics(config.PublishBackend)
	metrics.SetAppInfo(buildInfo.Version, buildInfo.Commit, runtime.Version())

	runner := transcoder.New(transcoder.Config{
		FFmpegPath:    config.FFmpegPath,
		FFprobePath:   config.FFprobePath,
		MaxConcurrent: int64(config.MaxConcurrentTranscodes),
	})
	startup.LogEngineInit(config.FFmpegPath, config.FFprobePath, config.MaxConcurrentTranscodes)

	pub, err := publisher.New(publisher.Config{
		Backend:       config.PublishBackend,
		CloudinaryURL: config.CloudinaryURL,
		OutputDir:     config.OutputDir,
		PublicBaseURL: config.PublicBaseURL,
	})
	if err != nil {
		startup.LogFatal("Failed to initialize publisher: %v", err)
	}
	startup.LogPublisherInit(pub.Name())

	images, err := convert.NewImageConverter(config.ImageDir)
	if err != nil {
		startup.LogFatal("Failed to initialize image converter: %v", err)
	}
	audio, err := convert.NewAudioConverter(runner, config.AudioDir)
	if err != nil {
		startup.LogFatal("Failed to initialize audio converter: %v", err)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	collector := metrics.NewCollector(filesystem.ScratchProvider(config.JobsDir), time.Minute)
	collector.Start()

	merger := pipeline.New(config.JobsDir, runner, pub)
	h := handlers.New(merger, images, audio, handlers.Options{
		SpoolDir:                 config.SpoolDir,
		MaxUploadSize:            config.MaxUploadSize,
		MaxConcurrentConversions: config.MaxConcurrentConversions,
		ImageGate:                monitor,
		ReadinessChecks: []handlers.DependencyCheck{
			{Name: "scratch", Check: writable(config.JobsDir)},
			{Name: "spool", Check: writable(config.SpoolDir)},
			{Name: "memory", Check: monitor.Check},
		},
	})

	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.CORS(config.AllowedOrigins)(handler)

	// No write timeout: a merge response is only written once the engine
	// and the upload have finished.
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, runner, collector, monitor)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		PublishBackend:  pub.Name(),
		PublicBaseURL:   config.PublicBaseURL,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	r.HandleFunc("/merge/videos", h.MergeVideos).Methods("POST")
	r.HandleFunc("/convert/image", h.ConvertImage).Methods("POST")
	r.HandleFunc("/convert/audio", h.ConvertAudio).Methods("POST")

	static := []struct {
		prefix string
		dir    string
	}{
		{"/" + convert.ImageDir + "/", config.ImageDir},
		{"/" + convert.AudioDir + "/", config.AudioDir},
		{"/" + publisher.MergedDir + "/", config.MergedDir},
	}
	for _, s := range static {
		files := http.FileServer(noListing{http.Dir(s.dir)})
		r.PathPrefix(s.prefix).Handler(http.StripPrefix(s.prefix, withMediaType(files))).Methods("GET", "HEAD")
	}

	return r
}

// volumeResolver labels filesystem metrics with the volume a path lives on.
func volumeResolver(config *startup.Config) *filesystem.VolumeResolver {
	return filesystem.NewVolumeResolver(map[string]string{
		"scratch": config.ScratchDir,
		"output":  config.OutputDir,
	})
}

// withMediaType sets Content-Type from the file extension so served media
// types follow the same table the upload checks use.
func withMediaType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ext := mediatypes.Ext(r.URL.Path); mediatypes.GetFileType(ext) != mediatypes.FileTypeOther {
			w.Header().Set("Content-Type", mediatypes.GetMimeType(ext))
		}
		next.ServeHTTP(w, r)
	})
}

// noListing hides directory indexes from the static file routes.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

func writable(dir string) func() error {
	return func() error {
		f, err := os.CreateTemp(dir, ".readyz-*")
		if err != nil {
			return err
		}
		f.Close()
		return os.Remove(f.Name())
	}
}

func handleShutdown(srv, metricsSrv *http.Server, runner *transcoder.Runner, collector *metrics.Collector, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	sd := startup.BeginShutdown(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sd.Step("Drain in-flight requests", func() error { return srv.Shutdown(ctx) })
	sd.Step("Stop engine processes", func() error {
		runner.Cleanup()
		return nil
	})
	sd.Step("Stop collectors", func() error {
		collector.Stop()
		monitor.Stop()
		return nil
	})
	if metricsSrv != nil {
		sd.Step("Stop metrics server", func() error { return metricsSrv.Shutdown(ctx) })
	}

	sd.Done()
}
