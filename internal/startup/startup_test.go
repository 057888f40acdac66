package startup

import (
	"net/http"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"media-gallery/internal/gallery"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

// setDirs points the directory settings at a temp dir so Load never
// touches the production defaults.
func setDirs(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("SOURCE_DIR", filepath.Join(base, "source"))
	t.Setenv("OUTPUT_DIR", filepath.Join(base, "source", "optimized"))
	t.Setenv("DATABASE_DIR", filepath.Join(base, "db"))
	return base
}

func TestLoadDefaults(t *testing.T) {
	base := setDirs(t)
	for _, key := range []string{"PORT", "METRICS_PORT", "METRICS_ENABLED", "DEFAULT_LOCALE",
		"PUBLIC_MEDIA_PREFIX", "PUBLIC_SOURCE_PREFIX", "CACHE_TTL", "FILE_TIMEOUT",
		"CORS_ORIGINS", "LOG_STATIC_FILES", "INGEST_WORKERS"} {
		t.Setenv(key, "")
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.SourceDir != filepath.Join(base, "source") {
		t.Errorf("SourceDir = %q", config.SourceDir)
	}
	if config.Port != DefaultPort || config.MetricsPort != DefaultMetricsPort {
		t.Errorf("ports = %s/%s", config.Port, config.MetricsPort)
	}
	if !config.MetricsEnabled || config.LogStaticFiles {
		t.Errorf("MetricsEnabled=%v LogStaticFiles=%v", config.MetricsEnabled, config.LogStaticFiles)
	}
	if config.DefaultLocale != gallery.LocaleEN {
		t.Errorf("DefaultLocale = %q", config.DefaultLocale)
	}
	if config.PublicMediaPrefix != DefaultPublicMediaPrefix || config.PublicSourcePrefix != DefaultPublicSourcePrefix {
		t.Errorf("prefixes = %q, %q", config.PublicMediaPrefix, config.PublicSourcePrefix)
	}
	if config.CacheTTL != DefaultCacheTTL || config.FileTimeout != DefaultFileTimeout {
		t.Errorf("CacheTTL=%v FileTimeout=%v", config.CacheTTL, config.FileTimeout)
	}
	if !reflect.DeepEqual(config.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v", config.CORSOrigins)
	}
	if config.IngestWorkers < 1 || config.IngestWorkers > DefaultMaxWorkers {
		t.Errorf("IngestWorkers = %d", config.IngestWorkers)
	}
}

func TestLoadOverrides(t *testing.T) {
	setDirs(t)
	t.Setenv("PORT", "3000")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("DEFAULT_LOCALE", "pl")
	t.Setenv("PUBLIC_MEDIA_PREFIX", "/cdn/optimized/")
	t.Setenv("CACHE_TTL", "0")
	t.Setenv("FILE_TIMEOUT", "30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("INGEST_WORKERS", "3")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Port != "3000" || config.MetricsEnabled {
		t.Errorf("Port=%s MetricsEnabled=%v", config.Port, config.MetricsEnabled)
	}
	if config.DefaultLocale != gallery.LocalePL {
		t.Errorf("DefaultLocale = %q", config.DefaultLocale)
	}
	if config.PublicMediaPrefix != "/cdn/optimized" {
		t.Errorf("PublicMediaPrefix = %q, want trailing slash trimmed", config.PublicMediaPrefix)
	}
	if config.CacheTTL != 0 || config.FileTimeout != 30*time.Second {
		t.Errorf("CacheTTL=%v FileTimeout=%v", config.CacheTTL, config.FileTimeout)
	}
	if !reflect.DeepEqual(config.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("CORSOrigins = %v", config.CORSOrigins)
	}
	if config.IngestWorkers != 3 {
		t.Errorf("IngestWorkers = %d, want 3", config.IngestWorkers)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	setDirs(t)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("FILE_TIMEOUT", "-5s")
	t.Setenv("METRICS_ENABLED", "maybe")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want default", config.CacheTTL)
	}
	if config.FileTimeout != DefaultFileTimeout {
		t.Errorf("FileTimeout = %v, want default", config.FileTimeout)
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled should fall back to true")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unsupported locale", map[string]string{"DEFAULT_LOCALE": "de"}},
		{"output equals source", map[string]string{"OUTPUT_DIR": "SAME"}},
		{"relative media prefix", map[string]string{"PUBLIC_MEDIA_PREFIX": "optimized"}},
		{"identical prefixes", map[string]string{"PUBLIC_MEDIA_PREFIX": "/m", "PUBLIC_SOURCE_PREFIX": "/m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := setDirs(t)
			for k, v := range tt.env {
				if v == "SAME" {
					v = filepath.Join(base, "source")
				}
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPrepareDatabaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	if err := PrepareDatabaseDir(dir); err != nil {
		t.Fatalf("PrepareDatabaseDir failed: %v", err)
	}
	if err := PrepareDatabaseDir(dir); err != nil {
		t.Fatalf("second PrepareDatabaseDir failed: %v", err)
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	r := mux.NewRouter()
	r.HandleFunc("/gallery", noop).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/gallery/tags", noop).Methods(http.MethodGet)
	r.PathPrefix("/media/gallery/optimized/").HandlerFunc(noop)

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	want := []RouteInfo{
		{Method: http.MethodGet, Path: "/gallery"},
		{Method: http.MethodHead, Path: "/gallery"},
		{Method: http.MethodGet, Path: "/gallery/tags"},
		{Method: "*", Path: "/media/gallery/optimized/"},
	}
	if !reflect.DeepEqual(routes, want) {
		t.Errorf("GetRoutes() = %+v, want %+v", routes, want)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", ""},
		{"/gallery", "gallery"},
		{"/gallery/tags", "gallery"},
		{"/health", "health"},
		{"/media/gallery/optimized/", "media/gallery"},
		{"/media", "media"},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"*", []string{"*"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
