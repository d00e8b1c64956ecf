package extractor

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of extracting one file.
type Status int

const (
	// StatusSuccess means a Document was produced.
	StatusSuccess Status = iota
	// StatusSkipped means the file was filtered out. Skips are not failures.
	StatusSkipped
	// StatusFailed means extraction aborted with an error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// SkipReason explains a StatusSkipped result.
type SkipReason string

const (
	// SkipHidden marks a file whose name starts with the hidden-file marker.
	SkipHidden SkipReason = "hidden"
	// SkipUnknownType marks a file whose content type cannot be inferred.
	SkipUnknownType SkipReason = "unknown_type"
)

// Stage names used in Timings.
const (
	StageBase     = "base"
	StageMdls     = "mdls"
	StageXattr    = "xattr"
	StageVideo    = "video"
	StageImage    = "image"
	StageAudio    = "audio"
	StageChecksum = "checksum"
)

// StageTiming is the elapsed time of one extraction stage.
type StageTiming struct {
	Stage   string
	Elapsed time.Duration
}

// Timings lists stage timings in execution order.
type Timings []StageTiming

// Get returns the elapsed time of stage and whether it ran.
func (t Timings) Get(stage string) (time.Duration, bool) {
	for _, st := range t {
		if st.Stage == stage {
			return st.Elapsed, true
		}
	}
	return 0, false
}

// String renders timings as "base: 0.01s - mdls: 0.20s".
func (t Timings) String() string {
	parts := make([]string, 0, len(t))
	for _, st := range t {
		parts = append(parts, fmt.Sprintf("%s: %.2fs", st.Stage, st.Elapsed.Seconds()))
	}
	return strings.Join(parts, " - ")
}

// Result is the outcome of extracting one file. It always carries the path
// and size of the file it describes, whatever order results arrive in.
type Result struct {
	Path     string
	Size     int64
	Status   Status
	Document *Document
	Reason   SkipReason
	Err      error
	Duration time.Duration
	Timings  Timings
}
