// Package indexer runs the gallery ingestion pipeline.
//
// Walk lists the supported media files below a source root in a stable
// order. The Ingester derives a slug and title for each file, rejects
// collisions, and then processes files on a bounded worker pool: metadata
// and placeholder extraction, variant generation, and one transaction per
// item. A failure affects only the file that caused it; the run reports
// every failure in its Report.
//
// Supported file types:
//   - Images: jpg, jpeg, png, webp, heic, avif
//   - Videos: mov, mp4, webm, avi
//
// Hidden files and directories (prefixed with '.') and the derived-output
// directory are excluded from the walk.
package indexer
