// Package metrics declares the Prometheus collectors for the gallery.
//
// All metrics are prefixed with "gallery_". They cover:
//   - HTTP traffic (requests, durations, in-flight)
//   - database queries and per-item write transactions
//   - ingestion runs, per-file results, stage durations and variants written
//   - query cache hits/misses and rejected parameters
//   - stored item and tag totals, refreshed by Collector
//   - filesystem retries after stale NFS handles
//
// Collectors are registered with the default registry via promauto and are
// exposed by promhttp on the metrics port.
package metrics
