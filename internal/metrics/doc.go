// Package metrics provides Prometheus instrumentation for media-indexer.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "media_indexer_". They are served on /metrics when
// METRICS_ADDR is set.
//
// # Metric Categories
//
// ## Store
//
//   - DBQueryTotal: store operations by operation and status
//   - DBQueryDuration: store operation latency by operation
//   - DBTransactionDuration: transaction latency by outcome (commit/rollback)
//   - StoreDocumentsTotal: documents currently held by the store
//
// ## Runs
//
//   - IndexerRunsTotal: finished runs by final state
//   - IndexerIsRunning: 1 while a run is in progress
//   - IndexerLastRunDuration: wall time of the last run
//   - IndexerBacklogFiles: files discovered by enumeration
//   - IndexerFilesTotal: files processed by outcome
//   - IndexerParallelWorkers: ready extraction workers
//   - IndexerWorkerSetupFailures: workers whose setup failed
//   - IndexerRate: overall documents per second
//
// ## Extraction
//
//   - ExtractionDuration, ExtractionStageDuration: per-file and per-stage time
//   - ProbeFailuresTotal: failed external probes by probe
//   - ExtractionSkipsTotal: skipped files by reason
//   - VideoStreamsTotal: video streams seen by codec
//
// ## Batches
//
//   - BatchFlushesTotal, BatchFlushDuration, BatchDocumentsTotal, BatchBytes
//
// ## Filesystem and memory
//
//   - FilesystemRetry*: retries of transient filesystem errors
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses, GoMemLimit
//
// ## Monitoring endpoint
//
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// Call [InitializeMetrics] once at startup so every label combination is
// exported from the first scrape. A [Collector] keeps StoreDocumentsTotal
// current while a run is in progress:
//
//	collector := metrics.NewCollector(store, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Files per minute over the last five minutes:
//
//	sum(rate(media_indexer_files_total[5m])) * 60
//
// Share of batch documents demoted to failures:
//
//	rate(media_indexer_batch_documents_total{status="demoted"}[1h]) /
//	rate(media_indexer_batch_documents_total[1h])
//
// P95 extraction time per stage:
//
//	histogram_quantile(0.95, sum(rate(media_indexer_extraction_stage_duration_seconds_bucket[5m])) by (le, stage))
package metrics
