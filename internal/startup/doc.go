// Package startup loads configuration and logs the environment a run starts
// in.
//
// Configuration comes from environment variables, optionally preceded by a
// YAML file named by CONFIG_FILE (or the --config flag). Environment values
// override the file.
//
//	STORE_URI        store target (default sqlite://./media.db)
//	INGEST_WORKERS   extraction workers, 0 = one per CPU, capped at 8
//	BATCH_SIZE       documents per store write (default 20)
//	PROBE_TIMEOUT    per-probe timeout such as 30s (default none)
//	CHECKSUM         add a BLAKE2b-256 checksum to every document
//	MIME_TYPES_FILE  extra extension mappings in mime.types format
//	METRICS_ADDR     serve /metrics, /healthz and /status while running
//	MEMORY_LIMIT     memory budget in bytes used to derive GOMEMLIMIT
//	MEMORY_RATIO     share of MEMORY_LIMIT for the Go heap (default 0.85)
//	MDLS_CMD, XATTR_CMD, FFPROBE_CMD, IDENTIFY_CMD
//	                 probe command lines, shell-quoted
//
// The startup log prints a banner, host CPU, memory and disk details from
// gopsutil, and which probe executables are on PATH.
package startup
