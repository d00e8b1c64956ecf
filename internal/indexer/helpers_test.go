package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"media-indexer/internal/extractor"
)

// fakeStore records batches in memory. Calls listed in failOn (1-based)
// return an error instead.
type fakeStore struct {
	mu      sync.Mutex
	docs    []*extractor.Document
	batches []int
	calls   int
	failOn  map[int]bool
	failAll bool
	deleted int
}

var errWrite = errors.New("write failed")

func (s *fakeStore) InsertMany(_ context.Context, docs []*extractor.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failAll || s.failOn[s.calls] {
		return errWrite
	}
	s.docs = append(s.docs, docs...)
	s.batches = append(s.batches, len(docs))
	return nil
}

func (s *fakeStore) DeleteMany(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.docs)
	s.docs = nil
	s.deleted += n
	return int64(n), nil
}

func (s *fakeStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

func (s *fakeStore) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// funcExtractor adapts a function to the Extractor interface.
type funcExtractor func(ctx context.Context, path string) extractor.Result

func (f funcExtractor) Extract(ctx context.Context, path string) extractor.Result {
	return f(ctx, path)
}

func setupWith(f funcExtractor) SetupFunc {
	return func(int) (Extractor, error) { return f, nil }
}

func succeed(_ context.Context, path string) extractor.Result {
	return extractor.Result{
		Path:     path,
		Status:   extractor.StatusSuccess,
		Document: &extractor.Document{FilePath: path, ContentType: "image/jpeg"},
		Duration: time.Millisecond,
	}
}

// recordingReporter keeps every event and optionally calls onFile after
// each FileDone.
type recordingReporter struct {
	mu      sync.Mutex
	files   []extractor.Result
	commits []BatchReport
	summary *Summary
	onFile  func(n int)
}

func (r *recordingReporter) FileDone(res extractor.Result, _ Snapshot) {
	r.mu.Lock()
	r.files = append(r.files, res)
	n := len(r.files)
	r.mu.Unlock()
	if r.onFile != nil {
		r.onFile(n)
	}
}

func (r *recordingReporter) Committed(b BatchReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, b)
}

func (r *recordingReporter) Finished(s Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = &s
}

func makeItems(n int) []WorkItem {
	items := make([]WorkItem, n)
	for i := range items {
		items[i] = WorkItem{Path: filepath.Join("/media", "file"+strconv.Itoa(i)+".jpg"), Size: int64(i + 1)}
	}
	return items
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
