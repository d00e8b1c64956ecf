/*
Package workers determines worker pool sizes in containerized environments.

# Overview

When running in a container the number of usable CPUs may be limited by cgroup
constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit while
runtime.NumCPU() still reports the host, so worker counts here are derived from
GOMAXPROCS.

# Extraction Pool

The metadata extraction pool uses one worker per usable CPU and never more
than MaxExtractionWorkers (8):

	numWorkers := workers.ForExtraction()

On a 32-CPU host this still yields 8. Each worker launches external probe
processes (mdls, xattr, ffprobe, identify), so the cap also bounds the number
of concurrent child processes.

# Environment Variable Override

INGEST_WORKERS pins the count. The override is still capped:

	env:
	- name: INGEST_WORKERS
	  value: "4"

# Custom Configuration

Count applies a multiplier and a limit; Compute is the same calculation with
the parallelism figure passed in explicitly, which is what tests use:

	workers.Compute(32, 1.0, workers.MaxExtractionWorkers, 0) // 8
	workers.Compute(2, 2.0, 0, 0)                             // 4
*/
package workers
