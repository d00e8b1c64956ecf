package metrics

// Stage and probe names shared with the extractor, listed here so that every
// label combination is exported from the first scrape.
var (
	extractionStages = []string{"base", "mdls", "xattr", "video", "image", "audio", "checksum"}
	probeNames       = []string{"mdls", "xattr", "ffprobe", "identify", "audio_tag", "image_header"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Run outcomes ---
	for _, state := range []string{"completed", "interrupted", "fatal_error"} {
		IndexerRunsTotal.WithLabelValues(state)
	}

	for _, outcome := range []string{"success", "skipped", "failed"} {
		IndexerFilesTotal.WithLabelValues(outcome)
	}

	// --- Extraction ---
	for _, stage := range extractionStages {
		ExtractionStageDuration.WithLabelValues(stage)
	}
	for _, probe := range probeNames {
		ProbeFailuresTotal.WithLabelValues(probe)
	}
	for _, reason := range []string{"hidden", "unknown_type"} {
		ExtractionSkipsTotal.WithLabelValues(reason)
	}

	// --- Batches ---
	for _, status := range []string{"success", "error"} {
		BatchFlushesTotal.WithLabelValues(status)
	}
	for _, status := range []string{"written", "demoted"} {
		BatchDocumentsTotal.WithLabelValues(status)
	}

	// --- Filesystem retry metrics (per retry-operation × volume) ---
	for _, op := range []string{"stat", "open"} {
		for _, vol := range []string{"media", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- Store operations ---
	for _, op := range []string{"migrate", "insert_one", "insert_many", "delete_many", "count", "count_by_type"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, t := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(t)
	}
}
