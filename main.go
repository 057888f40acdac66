package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"media-gallery/internal/cache"
	"media-gallery/internal/database"
	"media-gallery/internal/gallery"
	"media-gallery/internal/handlers"
	"media-gallery/internal/logging"
	"media-gallery/internal/memory"
	"media-gallery/internal/metrics"
	"media-gallery/internal/middleware"
	"media-gallery/internal/query"
	"media-gallery/internal/startup"

	"github.com/gorilla/mux"
)

const (
	// Cached pages are keyed by type, page, size, locale and tag.
	maxCachedPages = 2048
	shutdownGrace  = 30 * time.Second
)

func main() {
	startTime := time.Now()
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)
	metrics.InitializeMetrics()

	dbStart := time.Now()
	db, err := database.New(context.Background(), filepath.Join(config.DatabaseDir, database.FileName))
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	collector := metrics.NewCollector(db, time.Minute)
	collector.Start()

	stopDBMetrics := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				db.UpdateDBMetrics()
			case <-stopDBMetrics:
				return
			}
		}
	}()

	svc := query.NewService(db, config.DefaultLocale, query.Caches{
		Pages: cache.New[string, *query.Page](config.CacheTTL, maxCachedPages),
		Tags:  cache.New[gallery.Locale, *query.TagList](config.CacheTTL, len(gallery.SupportedLocales)),
	})

	h := handlers.New(svc, db, handlers.Config{
		DefaultLocale: config.DefaultLocale,
		OutputDir:     config.OutputDir,
		SourceDir:     config.SourceDir,
	})

	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           buildMiddleware(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Video originals are streamed, so writes are not bounded.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet)
		metricsRouter.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		handleSignals(srv, metricsSrv, svc)
		collector.Stop()
		close(stopDBMetrics)
		if err := db.Close(); err != nil {
			logging.Warn("Failed to close database: %v", err)
		} else {
			startup.LogShutdownStepComplete("Database closed")
		}
		startup.LogShutdownComplete()
		close(done)
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc("/gallery", h.Gallery).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/gallery/tags", h.GalleryTags).Methods(http.MethodGet, http.MethodHead)

	r.PathPrefix(config.PublicMediaPrefix + "/").
		Handler(h.DerivedFiles(config.PublicMediaPrefix)).
		Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix(config.PublicSourcePrefix + "/").
		Handler(h.SourceFiles(config.PublicSourcePrefix)).
		Methods(http.MethodGet, http.MethodHead)

	return r
}

// buildMiddleware wraps the router as compression(cors(logging(metrics(router)))).
func buildMiddleware(router http.Handler, config *startup.Config) http.Handler {
	metricsHandler := middleware.Metrics(middleware.DefaultMetricsConfig(
		config.PublicMediaPrefix, config.PublicSourcePrefix))(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggedHandler := middleware.Logger(loggingConfig)(metricsHandler)

	corsHandler := middleware.CORS(config.CORSOrigins)(loggedHandler)
	return middleware.Compression(middleware.DefaultCompressionConfig())(corsHandler)
}

// handleSignals purges cached responses on SIGHUP and returns once the
// servers have been shut down after SIGINT or SIGTERM.
func handleSignals(srv, metricsSrv *http.Server, svc *query.Service) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	var sig os.Signal
	for sig = range sigChan {
		if sig != syscall.SIGHUP {
			break
		}
		svc.Purge()
		logging.Info("Received SIGHUP, cached gallery responses dropped")
	}

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}
}
