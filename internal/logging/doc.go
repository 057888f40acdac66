// Package logging provides the leveled logger shared by the gallery server,
// the ingestion job and the maintenance CLIs.
//
// Levels, lowest first:
//   - DEBUG: per-file and per-variant detail
//   - INFO: batch progress and server lifecycle
//   - WARN: skipped files and degraded paths
//   - ERROR: failures that need attention
//   - FATAL: terminates the process
//
// The level comes from DEBUG (truthy forces debug) or LOG_LEVEL, and can be
// overridden with SetLevel.
package logging
