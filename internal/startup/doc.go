// Package startup handles configuration loading and startup/shutdown logging
// for the gallery server and command line tools.
//
// # Configuration
//
// [Load] reads an optional .env file and then the environment:
//
//   - SOURCE_DIR: Root of the original media (default: /media/gallery)
//   - OUTPUT_DIR: Where derived variants are written, must differ from SOURCE_DIR
//     (default: /media/gallery/optimized)
//   - DATABASE_DIR: Directory holding gallery.db (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - DEFAULT_LOCALE: Fallback locale, one of en, pl, uk (default: en)
//   - PUBLIC_MEDIA_PREFIX: URL prefix of derived files (default: /media/gallery/optimized)
//   - PUBLIC_SOURCE_PREFIX: URL prefix of original files (default: /media/gallery/source)
//   - CACHE_TTL: Query response cache lifetime, 0 disables it (default: 60s)
//   - INGEST_WORKERS: Parallel ingestion workers (default: GOMAXPROCS, at most 8)
//   - FILE_TIMEOUT: Processing budget per source file (default: 2m)
//   - CORS_ORIGINS: Comma separated allowed origins (default: *)
//   - LOG_STATIC_FILES: Log requests for media files (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// MEMORY_LIMIT and MEMORY_RATIO are read separately by package memory.
//
// Unparseable durations and booleans fall back to their defaults with a
// warning.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
package startup
