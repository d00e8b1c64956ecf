package extractor

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"media-indexer/internal/filesystem"
	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/metrics"
)

// Probes is the set of external metadata probes an Extractor calls.
// *probe.Set implements it.
type Probes interface {
	Spotlight(ctx context.Context, path string) (map[string]string, error)
	Xattr(ctx context.Context, path string) (map[string]string, error)
	Video(ctx context.Context, path string) (map[string]any, error)
	Image(ctx context.Context, path string) (map[string]any, error)
}

// Options configures an Extractor.
type Options struct {
	// RunID is stamped on every Document.
	RunID string
	// Checksum enables the content checksum stage.
	Checksum bool
	// Retry configures stat/open retries on stale NFS handles.
	Retry filesystem.RetryConfig
	// Now returns the indexing timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Extractor produces a Document for a single file. It holds no mutable
// state, so one value may serve any number of calls, but the pool gives
// each worker its own.
type Extractor struct {
	table  *mediatypes.Table
	probes Probes
	opts   Options
}

// New returns an Extractor using table for content types and probes for
// external metadata.
func New(table *mediatypes.Table, probes Probes, opts Options) *Extractor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Extractor{table: table, probes: probes, opts: opts}
}

// Extract runs every applicable stage against path. Probe failures degrade
// the Document; only a filter match skips it and only an aborted read (or a
// panic inside a stage) fails it.
func (e *Extractor) Extract(ctx context.Context, path string) (res Result) {
	start := time.Now()
	res.Path = path

	defer func() {
		if r := recover(); r != nil {
			res.Status = StatusFailed
			res.Document = nil
			res.Err = errors.Newf("extraction panicked: %v", r)
		}
		res.Duration = time.Since(start)
		e.report(&res)
	}()

	name := filepath.Base(path)
	if mediatypes.IsHidden(name) {
		res.Status = StatusSkipped
		res.Reason = SkipHidden
		return res
	}

	contentType, ok := e.table.ContentType(name)
	if !ok {
		res.Status = StatusSkipped
		res.Reason = SkipUnknownType
		return res
	}

	doc := &Document{
		RunID:       e.opts.RunID,
		FilePath:    path,
		Filename:    name,
		ContentType: contentType,
		ExtendedAttributes: ExtendedAttributes{
			Spotlight: map[string]string{},
			Xattr:     map[string]string{},
		},
	}

	e.stage(&res, StageBase, func() {
		base, err := e.baseAttributes(ctx, path)
		if err != nil {
			logging.Warn("Error getting base metadata for %s: %v", path, err)
			return
		}
		doc.BaseAttributes = base
		res.Size = base.Size
	})

	e.stage(&res, StageMdls, func() {
		if attrs, err := e.probes.Spotlight(ctx, path); err != nil {
			probeFailed("mdls", path, err)
		} else {
			doc.ExtendedAttributes.Spotlight = attrs
		}
	})

	e.stage(&res, StageXattr, func() {
		if attrs, err := e.probes.Xattr(ctx, path); err != nil {
			probeFailed("xattr", path, err)
		} else {
			doc.ExtendedAttributes.Xattr = attrs
		}
	})

	switch mediatypes.FileTypeOf(contentType) {
	case mediatypes.FileTypeVideo:
		e.stage(&res, StageVideo, func() {
			doc.VideoMetadata = e.videoMetadata(ctx, path)
		})
	case mediatypes.FileTypeImage:
		e.stage(&res, StageImage, func() {
			doc.ImageMetadata = e.imageMetadata(ctx, path)
		})
	case mediatypes.FileTypeAudio:
		e.stage(&res, StageAudio, func() {
			doc.AudioMetadata = e.audioMetadata(ctx, path)
		})
	}

	if e.opts.Checksum {
		var sumErr error
		e.stage(&res, StageChecksum, func() {
			doc.Checksum, sumErr = checksum(ctx, path, e.opts.Retry)
		})
		if sumErr != nil {
			res.Status = StatusFailed
			res.Err = errors.Wrapf(sumErr, "reading %s", path)
			return res
		}
	}

	doc.IndexedAt = e.opts.Now().UTC()
	res.Status = StatusSuccess
	res.Document = doc
	return res
}

// stage runs fn and appends its elapsed time under name.
func (e *Extractor) stage(res *Result, name string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	res.Timings = append(res.Timings, StageTiming{Stage: name, Elapsed: elapsed})
	metrics.ExtractionStageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (e *Extractor) baseAttributes(ctx context.Context, path string) (*BaseAttributes, error) {
	info, err := filesystem.StatWithRetry(ctx, path, e.opts.Retry)
	if err != nil {
		return nil, err
	}
	changed, modified, accessed := fileTimes(info)
	return &BaseAttributes{
		Size:     info.Size(),
		Created:  unixSeconds(changed),
		Modified: unixSeconds(modified),
		Accessed: unixSeconds(accessed),
	}, nil
}

// report writes the diagnostic line for skips and failures and records metrics.
func (e *Extractor) report(res *Result) {
	metrics.ExtractionDuration.Observe(res.Duration.Seconds())

	switch res.Status {
	case StatusSkipped:
		metrics.ExtractionSkipsTotal.WithLabelValues(string(res.Reason)).Inc()
		switch res.Reason {
		case SkipHidden:
			logging.Info("Skipping hidden file: %s", res.Path)
		case SkipUnknownType:
			logging.Info("Could not determine content type for: %s", res.Path)
		}
	case StatusFailed:
		logging.Error("Failed to process %s: %v", res.Path, res.Err)
	}
}

// probeFailed logs a probe failure. A missing program was already reported
// at startup, so it is only logged at debug level per file.
func probeFailed(probe, path string, err error) {
	metrics.ProbeFailuresTotal.WithLabelValues(probe).Inc()
	if errors.Is(err, exec.ErrNotFound) {
		logging.Debug("%s unavailable for %s: %v", probe, path, err)
		return
	}
	logging.Warn("Error getting %s metadata for %s: %v", probe, path, err)
}

// String describes a result for debug logging.
func (r Result) String() string {
	switch r.Status {
	case StatusSkipped:
		return fmt.Sprintf("%s skipped (%s)", r.Path, r.Reason)
	case StatusFailed:
		return fmt.Sprintf("%s failed: %v", r.Path, r.Err)
	default:
		return fmt.Sprintf("%s ok in %.2fs", r.Path, r.Duration.Seconds())
	}
}
