package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video"} {
		for _, result := range []string{"created", "replaced", "failed", "collision", "timeout"} {
			IngestFilesTotal.WithLabelValues(kind, result)
		}
	}

	for _, stage := range []string{"extract", "generate", "persist"} {
		IngestStageDuration.WithLabelValues(stage)
	}

	for _, format := range []string{"avif", "webp", "jpg"} {
		IngestVariantsTotal.WithLabelValues(format)
	}

	for _, outcome := range []string{"completed", "aborted"} {
		IngestRunsTotal.WithLabelValues(outcome)
	}

	for _, t := range []string{"main", "students", "success"} {
		GalleryItemsTotal.WithLabelValues(t)
	}

	for _, endpoint := range []string{"gallery", "tags"} {
		QueryCacheHits.WithLabelValues(endpoint)
		QueryCacheMisses.WithLabelValues(endpoint)
	}

	for _, field := range []string{"page", "pageSize", "locale", "tag", "type"} {
		QueryValidationErrors.WithLabelValues(field)
	}

	for _, op := range []string{"save_item", "get_item", "list_items", "set_i18n",
		"list_tags", "all_tags", "upsert_tag", "delete_tag", "tag_item", "untag_item", "stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
	}
}
