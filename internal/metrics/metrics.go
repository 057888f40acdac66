package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_db_transaction_duration_seconds",
			Help:    "Duration of per-item write transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"outcome"}, // commit, rollback
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Ingestion metrics
var (
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_ingest_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"}, // completed, aborted
	)

	IngestFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_ingest_files_total",
			Help: "Source files processed by the ingester, by kind and result",
		},
		[]string{"kind", "result"}, // result: created, replaced, failed, collision, timeout
	)

	IngestStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_ingest_stage_duration_seconds",
			Help:    "Per-item duration of each ingestion stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"}, // extract, generate, persist
	)

	IngestVariantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_ingest_variants_total",
			Help: "Derived files written, by format",
		},
		[]string{"format"},
	)

	IngestDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_ingest_degraded_total",
			Help: "Videos ingested with default dimensions or placeholder after a probe failure",
		},
	)

	IngestLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_ingest_last_run_duration_seconds",
			Help: "Duration of the last ingestion run in seconds",
		},
	)

	IngestWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_ingest_workers",
			Help: "Number of parallel item workers in the current run",
		},
	)

	IngestMemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_ingest_memory_usage_ratio",
			Help: "Go heap as a fraction of GOMEMLIMIT, sampled before each file",
		},
	)

	IngestMemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_ingest_memory_paused",
			Help: "1 while ingestion waits for memory to be released",
		},
	)
)

// Query metrics
var (
	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_query_cache_hits_total",
			Help: "Query responses served from the response cache",
		},
		[]string{"endpoint"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_query_cache_misses_total",
			Help: "Query responses built from the database",
		},
		[]string{"endpoint"},
	)

	QueryValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_query_validation_errors_total",
			Help: "Rejected query requests by parameter",
		},
		[]string{"field"},
	)

	GalleryItemsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_items_total",
			Help: "Stored gallery items by collection type",
		},
		[]string{"type"},
	)

	GalleryTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_tags_total",
			Help: "Stored tags with at least one item",
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_attempts_total",
			Help: "Retries of filesystem operations after stale NFS handles",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_filesystem_retry_failures_total",
			Help: "Filesystem operations that still failed after all retries",
		},
		[]string{"operation"},
	)
)

// App info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "gallery_app_info",
		Help: "Build information, value is always 1",
	},
	[]string{"version", "commit", "go_version"},
)
