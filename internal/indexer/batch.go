package indexer

import (
	"context"
	"time"

	"media-indexer/internal/extractor"
	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

// DefaultBatchSize is the number of documents written per store call.
const DefaultBatchSize = 20

// BatchWriter stores a batch of documents atomically: either all of them
// are written or none are.
type BatchWriter interface {
	InsertMany(ctx context.Context, docs []*extractor.Document) error
}

// BatchReport describes one successful batch write.
type BatchReport struct {
	Documents int
	// Bytes is the sum of the file sizes the documents describe.
	Bytes    int64
	Duration time.Duration
	Final    bool
	// Completed and Total give run progress at the time of the write.
	Completed int
	Total     int
}

// Rate returns documents written per second.
func (b BatchReport) Rate() float64 {
	if b.Duration <= 0 {
		return 0
	}
	return float64(b.Documents) / b.Duration.Seconds()
}

// Percent returns Completed/Total as a percentage.
func (b BatchReport) Percent() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Completed) / float64(b.Total) * 100
}

// Accumulator buffers successful documents and writes them in batches.
// It is not safe for concurrent use; the coordinator owns it.
//
// Documents are counted as succeeded when extracted. If a batch write
// fails, the whole batch is moved from succeeded to failed and dropped.
// Nothing is retried.
type Accumulator struct {
	w         BatchWriter
	threshold int
	stats     *RunStatistics
	rep       Reporter

	batch []*extractor.Document
	bytes int64
}

// NewAccumulator returns an Accumulator that flushes to w once threshold
// documents are buffered. A threshold below 1 uses DefaultBatchSize.
func NewAccumulator(w BatchWriter, threshold int, stats *RunStatistics, rep Reporter) *Accumulator {
	if threshold < 1 {
		threshold = DefaultBatchSize
	}
	if rep == nil {
		rep = nopReporter{}
	}
	return &Accumulator{
		w:         w,
		threshold: threshold,
		stats:     stats,
		rep:       rep,
		batch:     make([]*extractor.Document, 0, threshold),
	}
}

// Add appends doc to the in-flight batch.
func (a *Accumulator) Add(doc *extractor.Document) {
	a.batch = append(a.batch, doc)
	a.bytes += doc.Size()
}

// Len returns the number of buffered documents.
func (a *Accumulator) Len() int {
	return len(a.batch)
}

// MaybeFlush writes the batch once it has reached the threshold.
func (a *Accumulator) MaybeFlush(ctx context.Context) {
	if len(a.batch) >= a.threshold {
		a.flush(ctx, false)
	}
}

// FlushRemaining writes any partial batch. It is called once on orderly
// shutdown and never on an interrupted run.
func (a *Accumulator) FlushRemaining(ctx context.Context) {
	if len(a.batch) > 0 {
		a.flush(ctx, true)
	}
}

// Discard drops the buffered documents and returns how many there were.
func (a *Accumulator) Discard() int {
	n := len(a.batch)
	a.reset()
	return n
}

func (a *Accumulator) flush(ctx context.Context, final bool) {
	n := len(a.batch)
	start := time.Now()
	err := a.w.InsertMany(ctx, a.batch)
	duration := time.Since(start)

	metrics.BatchFlushDuration.Observe(duration.Seconds())
	metrics.BatchBytes.Observe(float64(a.bytes))

	if err != nil {
		a.stats.Failed += n
		a.stats.Succeeded -= n
		metrics.BatchFlushesTotal.WithLabelValues("error").Inc()
		metrics.BatchDocumentsTotal.WithLabelValues("demoted").Add(float64(n))
		logging.Error("Error inserting batch of %d documents: %v", n, err)
		a.reset()
		return
	}

	metrics.BatchFlushesTotal.WithLabelValues("success").Inc()
	metrics.BatchDocumentsTotal.WithLabelValues("written").Add(float64(n))

	a.rep.Committed(BatchReport{
		Documents: n,
		Bytes:     a.bytes,
		Duration:  duration,
		Final:     final,
		Completed: a.stats.Processed,
		Total:     a.stats.Discovered,
	})
	a.reset()
}

// reset clears the batch without reusing its backing array, which the
// writer may still reference.
func (a *Accumulator) reset() {
	a.batch = make([]*extractor.Document, 0, a.threshold)
	a.bytes = 0
}
