package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-indexer/internal/logging"
)

const (
	// DefaultMemoryRatio is the share of the memory limit given to the Go heap.
	// The rest is left for probe processes and cgo allocations.
	DefaultMemoryRatio = 0.85
)

// ConfigResult reports how the Go memory limit was configured.
type ConfigResult struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source string
	// ContainerLimit is the configured process memory limit in bytes.
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configure sets the Go memory limit to ratio*limitBytes. An explicit
// GOMEMLIMIT in the environment wins, and a zero limit leaves the runtime
// untouched. Call it before the pool starts.
func Configure(limitBytes int64, ratio float64) ConfigResult {
	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		result := ConfigResult{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	if limitBytes <= 0 {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return ConfigResult{Source: "none"}
	}

	if ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %.2f out of range (0.0-1.0], using default %.2f", ratio, DefaultMemoryRatio)
		ratio = DefaultMemoryRatio
	}

	goMemLimit := int64(float64(limitBytes) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s limit)",
		FormatBytes(goMemLimit),
		ratio*100,
		FormatBytes(limitBytes),
	)

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: limitBytes,
		GoMemLimit:     goMemLimit,
		Ratio:          ratio,
	}
}

// FormatBytes formats b as a binary-prefixed size, e.g. "1.5 GiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
