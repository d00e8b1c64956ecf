// Package memory configures the Go memory limit and pauses work dispatch
// when heap usage approaches it.
//
// Probe output for large media trees is held in memory until a batch is
// written, so a long run on a small host can grow past its budget. Set
// MEMORY_LIMIT (bytes) and optionally MEMORY_RATIO (default 0.85) and
// [Configure] derives GOMEMLIMIT from them; an explicit GOMEMLIMIT wins.
//
// A [Monitor] samples heap usage. Once usage crosses CriticalWaterMark the
// worker pool stops handing out new files until usage falls back under
// HighWaterMark. Without a limit the monitor is inert.
package memory
