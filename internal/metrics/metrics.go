package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_db_queries_total",
			Help: "Total number of store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_db_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_db_transaction_duration_seconds",
			Help:    "Store transaction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"type"}, // "commit", "rollback"
	)

	StoreDocumentsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_store_documents",
			Help: "Number of documents in the store, sampled periodically",
		},
	)
)

// Indexer run metrics
var (
	IndexerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_runs_total",
			Help: "Total number of indexer runs by final state",
		},
		[]string{"state"}, // "completed", "interrupted", "fatal_error"
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_running",
			Help: "Whether a run is in progress (1 = running, 0 = idle)",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_last_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		},
	)

	IndexerBacklogFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_backlog_files",
			Help: "Number of files discovered during enumeration",
		},
	)

	IndexerFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_files_total",
			Help: "Total number of files processed by outcome",
		},
		[]string{"outcome"}, // "success", "skipped", "failed"
	)

	IndexerParallelWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_parallel_workers",
			Help: "Number of extraction workers serving the pool",
		},
	)

	IndexerWorkerSetupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_indexer_worker_setup_failures_total",
			Help: "Total number of extraction workers that failed their setup step",
		},
	)

	IndexerRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_rate_files_per_second",
			Help: "Overall processing rate of the current run",
		},
	)
)

// Extraction metrics
var (
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_indexer_extraction_duration_seconds",
			Help:    "Time to extract metadata from a single file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ExtractionStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_extraction_stage_duration_seconds",
			Help:    "Time spent in each extraction stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	ProbeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_probe_failures_total",
			Help: "Total number of external probe invocations that failed",
		},
		[]string{"probe"},
	)

	ExtractionSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_extraction_skips_total",
			Help: "Total number of files skipped by reason",
		},
		[]string{"reason"}, // "hidden", "unknown_type"
	)

	VideoStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_video_streams_total",
			Help: "Streams reported by the container probe, by codec type and codec",
		},
		[]string{"codec_type", "codec"},
	)
)

// Batch metrics
var (
	BatchFlushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_batch_flushes_total",
			Help: "Total number of batch writes by status",
		},
		[]string{"status"}, // "success", "error"
	)

	BatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_indexer_batch_flush_duration_seconds",
			Help:    "Time to write one batch to the store",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	BatchDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_batch_documents_total",
			Help: "Documents handed to batch writes by status",
		},
		[]string{"status"}, // "written", "demoted"
	)

	BatchBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_indexer_batch_bytes",
			Help:    "Sum of file sizes represented by one batch",
			Buckets: prometheus.ExponentialBuckets(1<<20, 4, 10),
		},
	)
)

// Filesystem metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_filesystem_retry_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_memory_paused",
			Help: "Whether dispatch is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_indexer_memory_gc_pauses_total",
			Help: "Total number of times dispatch was paused for memory pressure",
		},
	)

	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_go_memlimit_bytes",
			Help: "Configured Go memory limit in bytes (0 = none)",
		},
	)
)

// Monitoring endpoint metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_indexer_http_requests_total",
			Help: "Total number of requests served by the monitoring endpoint",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_indexer_http_request_duration_seconds",
			Help:    "Monitoring endpoint request duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_indexer_http_requests_in_flight",
			Help: "Number of monitoring endpoint requests currently being served",
		},
	)
)

// Application info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "media_indexer_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
