/*
Package workers sizes the ingestion worker pool.

Variant generation is CPU-bound: every image is re-encoded twelve times. The
pool therefore defaults to one worker per available CPU as reported by
GOMAXPROCS, which honours container CPU limits, capped by the caller:

	n := workers.ForCPU(8)

Set INGEST_WORKERS to pin the count, e.g. to 1 on a shared build host.
*/
package workers
