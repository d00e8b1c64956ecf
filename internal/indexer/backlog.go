package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/metrics"
)

// WorkItem is one file discovered during enumeration. The size travels
// with the path so results can be reported without looking the file up
// again.
type WorkItem struct {
	Path string
	Size int64
}

// BuildBacklog walks root and returns every regular, non-hidden file below
// it as an absolute path. A symlink to a regular file is listed under the
// link's own path with the target's size; symlinked directories are not
// followed. Hidden directories are not descended into. Unreadable entries
// are logged and left out.
func BuildBacklog(ctx context.Context, root string) ([]WorkItem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}
	// WalkDir does not descend into a symlinked root.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	startTime := time.Now()
	var backlog []WorkItem

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == abs {
				return err
			}
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if path != abs && mediatypes.IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		var info fs.FileInfo
		switch {
		case d.Type().IsRegular():
			if info, err = d.Info(); err != nil {
				logging.Warn("Error getting info for %s: %v", path, err)
				return nil
			}
		case d.Type()&fs.ModeSymlink != 0:
			if info, err = os.Stat(path); err != nil {
				logging.Debug("Skipping broken symlink %s: %v", path, err)
				return nil
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		default:
			return nil
		}

		backlog = append(backlog, WorkItem{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "enumerating %s", abs)
	}

	metrics.IndexerBacklogFiles.Set(float64(len(backlog)))
	logging.Info("Found %d files under %s in %v", len(backlog), abs, time.Since(startTime).Round(time.Millisecond))
	return backlog, nil
}
