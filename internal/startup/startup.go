package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-gallery/internal/gallery"
	"media-gallery/internal/logging"
	"media-gallery/internal/workers"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
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

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Defaults for every setting read by Load.
const (
	DefaultSourceDir          = "/media/gallery"
	DefaultOutputDir          = "/media/gallery/optimized"
	DefaultDatabaseDir        = "/database"
	DefaultPort               = "8080"
	DefaultMetricsPort        = "9090"
	DefaultPublicMediaPrefix  = "/media/gallery/optimized"
	DefaultPublicSourcePrefix = "/media/gallery/source"
	DefaultCacheTTL           = 60 * time.Second
	DefaultFileTimeout        = 2 * time.Minute
	DefaultMaxWorkers         = 8
)

// Config holds all application configuration
type Config struct {
	SourceDir   string
	OutputDir   string
	DatabaseDir string

	Port           string
	MetricsPort    string
	MetricsEnabled bool
	LogStaticFiles bool

	DefaultLocale      gallery.Locale
	PublicMediaPrefix  string
	PublicSourcePrefix string
	CORSOrigins        []string

	// CacheTTL of zero disables the query response cache.
	CacheTTL      time.Duration
	IngestWorkers int
	FileTimeout   time.Duration
}

// LoadConfig prints the startup banner, loads the configuration and logs
// every resolved value. It is used by the HTTP server.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	config, err := Load()
	if err != nil {
		return nil, err
	}
	LogConfig(config)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureDirectory(config.SourceDir, "source"); err != nil {
		logging.Warn("  Source directory issue: %v", err)
	}
	if err := PrepareDatabaseDir(config.DatabaseDir); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads an optional .env file and then the environment. Values that
// cannot be parsed fall back to their defaults with a warning; directory
// and locale problems are errors.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Could not load .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SOURCE_DIR", DefaultSourceDir)
	v.SetDefault("OUTPUT_DIR", DefaultOutputDir)
	v.SetDefault("DATABASE_DIR", DefaultDatabaseDir)
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("METRICS_PORT", DefaultMetricsPort)
	v.SetDefault("DEFAULT_LOCALE", string(gallery.DefaultLocale))
	v.SetDefault("PUBLIC_MEDIA_PREFIX", DefaultPublicMediaPrefix)
	v.SetDefault("PUBLIC_SOURCE_PREFIX", DefaultPublicSourcePrefix)
	v.SetDefault("CORS_ORIGINS", "*")

	config := &Config{
		Port:               v.GetString("PORT"),
		MetricsPort:        v.GetString("METRICS_PORT"),
		MetricsEnabled:     boolSetting(v, "METRICS_ENABLED", true),
		LogStaticFiles:     boolSetting(v, "LOG_STATIC_FILES", false),
		PublicMediaPrefix:  strings.TrimRight(v.GetString("PUBLIC_MEDIA_PREFIX"), "/"),
		PublicSourcePrefix: strings.TrimRight(v.GetString("PUBLIC_SOURCE_PREFIX"), "/"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		CacheTTL:           durationSetting(v, "CACHE_TTL", DefaultCacheTTL),
		FileTimeout:        durationSetting(v, "FILE_TIMEOUT", DefaultFileTimeout),
		IngestWorkers:      workers.ForCPU(DefaultMaxWorkers),
	}

	locale, err := gallery.ParseLocale(v.GetString("DEFAULT_LOCALE"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_LOCALE: %w", err)
	}
	config.DefaultLocale = locale

	for _, p := range []struct {
		key  string
		dest *string
	}{
		{"SOURCE_DIR", &config.SourceDir},
		{"OUTPUT_DIR", &config.OutputDir},
		{"DATABASE_DIR", &config.DatabaseDir},
	} {
		abs, err := filepath.Abs(v.GetString(p.key))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p.key, err)
		}
		*p.dest = abs
	}

	if config.OutputDir == config.SourceDir {
		return nil, fmt.Errorf("OUTPUT_DIR must differ from SOURCE_DIR (%s)", config.SourceDir)
	}
	for key, prefix := range map[string]string{
		"PUBLIC_MEDIA_PREFIX":  config.PublicMediaPrefix,
		"PUBLIC_SOURCE_PREFIX": config.PublicSourcePrefix,
	} {
		if !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("%s must be an absolute URL path, got %q", key, prefix)
		}
	}
	if config.PublicMediaPrefix == config.PublicSourcePrefix {
		return nil, fmt.Errorf("PUBLIC_MEDIA_PREFIX and PUBLIC_SOURCE_PREFIX must differ")
	}

	return config, nil
}

// LogConfig logs the resolved configuration.
func LogConfig(config *Config) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  SOURCE_DIR:           %s", config.SourceDir)
	logging.Info("  OUTPUT_DIR:           %s", config.OutputDir)
	logging.Info("  DATABASE_DIR:         %s", config.DatabaseDir)
	logging.Info("  PORT:                 %s", config.Port)
	logging.Info("  METRICS_PORT:         %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:      %v", config.MetricsEnabled)
	logging.Info("  DEFAULT_LOCALE:       %s", config.DefaultLocale)
	logging.Info("  PUBLIC_MEDIA_PREFIX:  %s", config.PublicMediaPrefix)
	logging.Info("  PUBLIC_SOURCE_PREFIX: %s", config.PublicSourcePrefix)
	logging.Info("  CORS_ORIGINS:         %s", strings.Join(config.CORSOrigins, ","))
	logging.Info("  CACHE_TTL:            %v", config.CacheTTL)
	logging.Info("  INGEST_WORKERS:       %d", config.IngestWorkers)
	logging.Info("  FILE_TIMEOUT:         %v", config.FileTimeout)
	logging.Info("  LOG_STATIC_FILES:     %v", config.LogStaticFiles)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())
}

// PrepareDatabaseDir creates the database directory and checks it is
// writable.
func PrepareDatabaseDir(dir string) error {
	if err := ensureDirectory(dir, "database"); err != nil {
		return fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(dir); err != nil {
		return fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")
	return nil
}

func boolSetting(v *viper.Viper, key string, defaultValue bool) bool {
	value := v.GetString(key)
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

func durationSetting(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	value := v.GetString(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		logging.Warn("  Invalid %s %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogVideoTools reports whether ffmpeg is usable. Without it videos are
// ingested with default dimensions and placeholder.
func LogVideoTools() bool {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("VIDEO TOOLS")
	logging.Info("------------------------------------------------------------")

	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Videos will use default dimensions and placeholder")
		return false
	}
	logging.Info("  [OK] FFmpeg is available")
	return true
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Prefix routes such as the file servers have no methods
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logStaticFiles bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logStaticFiles {
		logging.Info("    Static file logging: ON")
	} else {
		logging.Info("    Static file logging: OFF (set LOG_STATIC_FILES=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.SplitN(path, "/", 3)

	switch {
	case parts[0] == "":
		return ""
	case parts[0] == "media" && len(parts) > 1:
		return "media/" + parts[1]
	default:
		return parts[0]
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Gallery:       http://0.0.0.0:%s/gallery", config.Port)
	logging.Info("    Tags:          http://0.0.0.0:%s/gallery/tags", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server, send SIGHUP to drop cached responses")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
   ______      ____
  / ____/___ _/ / /__  _______  __
 / / __/ __ '/ / / _ \/ ___/ / / /
/ /_/ / /_/ / / /  __/ /  / /_/ /
\____/\__,_/_/_/\___/_/   \__, /
                         /____/
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
		if err := os.MkdirAll(path, 0o755); err != nil {
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
	}
	return nil
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	if line, _, _ := strings.Cut(string(output), "\n"); line != "" {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(line))
	}
	return nil
}
