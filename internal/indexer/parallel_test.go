package indexer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"media-indexer/internal/extractor"
	"media-indexer/internal/workers"
)

func collect(results <-chan extractor.Result) []extractor.Result {
	var out []extractor.Result
	for res := range results {
		out = append(out, res)
	}
	return out
}

func TestPoolProcessesEveryItem(t *testing.T) {
	t.Parallel()

	items := makeItems(50)
	pool := NewPool(PoolConfig{Workers: 4}, setupWith(succeed))
	results := collect(pool.Run(context.Background(), items))

	if len(results) != len(items) {
		t.Fatalf("Expected %d results, got %d", len(items), len(results))
	}
	seen := make(map[string]bool)
	for _, res := range results {
		if seen[res.Path] {
			t.Errorf("Duplicate result for %s", res.Path)
		}
		seen[res.Path] = true
	}
	if err := pool.Err(); err != nil {
		t.Errorf("Expected no pool error, got %v", err)
	}
}

func TestPoolCapsWorkers(t *testing.T) {
	t.Parallel()

	var setups, active, peak atomic.Int32
	ext := funcExtractor(func(ctx context.Context, path string) extractor.Result {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return succeed(ctx, path)
	})

	pool := NewPool(PoolConfig{Workers: 32}, func(int) (Extractor, error) {
		setups.Add(1)
		return ext, nil
	})
	if pool.Workers() != workers.MaxExtractionWorkers {
		t.Fatalf("Expected %d workers, got %d", workers.MaxExtractionWorkers, pool.Workers())
	}

	results := collect(pool.Run(context.Background(), makeItems(100)))
	if len(results) != 100 {
		t.Fatalf("Expected 100 results, got %d", len(results))
	}
	if setups.Load() != workers.MaxExtractionWorkers {
		t.Errorf("Expected %d setups, got %d", workers.MaxExtractionWorkers, setups.Load())
	}
	if peak.Load() > workers.MaxExtractionWorkers {
		t.Errorf("Expected at most %d concurrent extractions, saw %d", workers.MaxExtractionWorkers, peak.Load())
	}
}

func TestPoolMinimumOneWorker(t *testing.T) {
	t.Parallel()

	pool := NewPool(PoolConfig{Workers: 0}, setupWith(succeed))
	if pool.Workers() != 1 {
		t.Errorf("Expected 1 worker, got %d", pool.Workers())
	}
}

func TestPoolFillsSizeFromBacklog(t *testing.T) {
	t.Parallel()

	skip := funcExtractor(func(_ context.Context, path string) extractor.Result {
		return extractor.Result{Path: path, Status: extractor.StatusSkipped, Reason: extractor.SkipUnknownType}
	})
	items := []WorkItem{{Path: "/m/a.txt", Size: 123}, {Path: "/m/b.txt", Size: 456}}

	pool := NewPool(PoolConfig{Workers: 2}, setupWith(skip))
	sizes := make(map[string]int64)
	for _, res := range collect(pool.Run(context.Background(), items)) {
		sizes[res.Path] = res.Size
	}

	for _, item := range items {
		if sizes[item.Path] != item.Size {
			t.Errorf("%s: expected size %d, got %d", item.Path, item.Size, sizes[item.Path])
		}
	}
}

func TestPoolAllSetupsFail(t *testing.T) {
	t.Parallel()

	pool := NewPool(PoolConfig{Workers: 3}, func(int) (Extractor, error) {
		return nil, errors.New("content types unavailable")
	})

	done := make(chan []extractor.Result)
	go func() { done <- collect(pool.Run(context.Background(), makeItems(5))) }()

	select {
	case results := <-done:
		if len(results) != 0 {
			t.Errorf("Expected no results, got %d", len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Pool did not close its results after all setups failed")
	}
	if !errors.Is(pool.Err(), ErrNoWorkers) {
		t.Errorf("Expected ErrNoWorkers, got %v", pool.Err())
	}
}

func TestPoolPartialSetupFailure(t *testing.T) {
	t.Parallel()

	pool := NewPool(PoolConfig{Workers: 4}, func(id int) (Extractor, error) {
		switch id {
		case 0:
			return nil, errors.New("broken")
		case 1:
			panic("setup exploded")
		}
		return funcExtractor(succeed), nil
	})

	results := collect(pool.Run(context.Background(), makeItems(20)))
	if len(results) != 20 {
		t.Errorf("Expected surviving workers to process all 20 items, got %d", len(results))
	}
	if err := pool.Err(); err != nil {
		t.Errorf("Expected no pool error, got %v", err)
	}
}

func TestPoolStopAbandonsWork(t *testing.T) {
	t.Parallel()

	var started sync.WaitGroup
	started.Add(2)
	block := funcExtractor(func(ctx context.Context, path string) extractor.Result {
		started.Done()
		<-ctx.Done()
		return extractor.Result{Path: path, Status: extractor.StatusFailed, Err: ctx.Err()}
	})

	pool := NewPool(PoolConfig{Workers: 2}, setupWith(block))
	results := pool.Run(context.Background(), makeItems(100))

	started.Wait()
	pool.Stop()

	done := make(chan int)
	go func() { done <- len(collect(results)) }()

	select {
	case n := <-done:
		if n > 2 {
			t.Errorf("Expected at most the two in-flight results, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Pool did not shut down after Stop")
	}
}

func TestPoolHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(PoolConfig{Workers: 2}, setupWith(succeed))
	done := make(chan struct{})
	go func() {
		collect(pool.Run(ctx, makeItems(1000)))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Pool did not exit on a cancelled context")
	}
}
