package indexer

import (
	"sync/atomic"
	"time"

	"media-indexer/internal/extractor"
	"media-indexer/internal/metrics"
)

// RunStatistics holds the counters of one run. It is owned by the
// coordinator goroutine; the tracker and the accumulator update it in place
// and nothing else writes to it.
type RunStatistics struct {
	RunID      string
	Started    time.Time
	Discovered int
	Processed  int
	Succeeded  int
	Failed     int
	Skipped    int
	// ProcessingTime is the sum of per-file extraction durations.
	ProcessingTime time.Duration
}

// Snapshot is a point-in-time view of a run's progress.
type Snapshot struct {
	Discovered  int           `json:"discovered"`
	Processed   int           `json:"processed"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Rate        float64       `json:"rate"`
	AvgDuration time.Duration `json:"avg_duration_ns"`
}

// Percent returns processed/discovered as a percentage.
func (s Snapshot) Percent() float64 {
	if s.Discovered == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Discovered) * 100
}

// Tracker folds results into RunStatistics and derives rates from them.
// Record and Snapshot must be called from the goroutine that owns the
// statistics; Latest may be called from anywhere.
type Tracker struct {
	stats  *RunStatistics
	now    func() time.Time
	latest atomic.Pointer[Snapshot]
}

// NewTracker returns a Tracker over stats. A zero stats.Started is set to
// the current time.
func NewTracker(stats *RunStatistics) *Tracker {
	t := &Tracker{stats: stats, now: time.Now}
	if stats.Started.IsZero() {
		stats.Started = t.now()
	}
	t.latest.Store(&Snapshot{Discovered: stats.Discovered})
	return t
}

// Record counts one finished file.
func (t *Tracker) Record(res extractor.Result) {
	t.stats.Processed++
	t.stats.ProcessingTime += res.Duration

	switch res.Status {
	case extractor.StatusSuccess:
		t.stats.Succeeded++
	case extractor.StatusFailed:
		t.stats.Failed++
	case extractor.StatusSkipped:
		t.stats.Skipped++
	}
	metrics.IndexerFilesTotal.WithLabelValues(res.Status.String()).Inc()
}

// Snapshot computes the current view and publishes it for Latest.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Discovered: t.stats.Discovered,
		Processed:  t.stats.Processed,
		Succeeded:  t.stats.Succeeded,
		Failed:     t.stats.Failed,
		Skipped:    t.stats.Skipped,
		Elapsed:    t.now().Sub(t.stats.Started),
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.Rate = float64(s.Processed) / secs
	}
	if s.Processed > 0 {
		s.AvgDuration = t.stats.ProcessingTime / time.Duration(s.Processed)
	}

	metrics.IndexerRate.Set(s.Rate)
	t.latest.Store(&s)
	return s
}

// Latest returns the most recently published snapshot.
func (t *Tracker) Latest() Snapshot {
	return *t.latest.Load()
}
