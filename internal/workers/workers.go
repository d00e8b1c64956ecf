package workers

import (
	"os"
	"runtime"
	"strconv"
)

// MaxExtractionWorkers caps the extraction pool. Every worker holds a store
// round-trip's worth of documents and spawns external probe processes, so the
// cap bounds contention on both regardless of how many CPUs are visible.
const MaxExtractionWorkers = 8

// OverrideEnv is the environment variable that pins the worker count.
const OverrideEnv = "INGEST_WORKERS"

// availableParallelism reports the usable CPU count. GOMAXPROCS follows
// container CPU limits in Go 1.19+.
var availableParallelism = func() int {
	return runtime.GOMAXPROCS(0)
}

// Count returns the optimal number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the INGEST_WORKERS environment variable; the
// override is still subject to limit.
func Count(multiplier float64, limit int) int {
	override := 0
	if value := os.Getenv(OverrideEnv); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			override = count
		}
	}

	return Compute(availableParallelism(), multiplier, limit, override)
}

// Compute is the pure form of Count: it derives a worker count from an
// explicit parallelism figure and an optional override (0 = none).
func Compute(available int, multiplier float64, limit, override int) int {
	workers := override
	if workers <= 0 {
		workers = int(float64(available) * multiplier)
	}

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForExtraction returns the worker count for the metadata extraction pool:
// one worker per CPU, never more than MaxExtractionWorkers.
func ForExtraction() int {
	return Count(1.0, MaxExtractionWorkers)
}
