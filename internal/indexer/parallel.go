package indexer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"media-indexer/internal/extractor"
	"media-indexer/internal/logging"
	"media-indexer/internal/memory"
	"media-indexer/internal/metrics"
	"media-indexer/internal/workers"
)

// ErrNoWorkers is returned by Pool.Err when every worker failed its setup.
var ErrNoWorkers = errors.New("no extraction worker could be set up")

// Extractor turns one path into a result. *extractor.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, path string) extractor.Result
}

// SetupFunc prepares the extractor a single worker will use for its whole
// life. It runs once per worker, on that worker's goroutine.
type SetupFunc func(worker int) (Extractor, error)

// PoolConfig configures a Pool.
type PoolConfig struct {
	// Workers is the number of workers. It is clamped to
	// [1, workers.MaxExtractionWorkers].
	Workers int
	// Memory, if set, pauses dispatch while heap usage is critical.
	Memory *memory.Monitor
}

// Pool runs extraction on a fixed set of workers and streams results in
// completion order.
type Pool struct {
	workers int
	memory  *memory.Monitor
	setup   SetupFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	err    error

	ready atomic.Int32
}

// NewPool returns a Pool that prepares each worker with setup.
func NewPool(cfg PoolConfig, setup SetupFunc) *Pool {
	n := cfg.Workers
	if n < 1 {
		n = 1
	}
	if n > workers.MaxExtractionWorkers {
		n = workers.MaxExtractionWorkers
	}
	return &Pool{workers: n, memory: cfg.Memory, setup: setup}
}

// Workers returns the number of workers the pool starts.
func (p *Pool) Workers() int {
	return p.workers
}

// Run starts the workers and dispatches backlog to them. The returned
// channel yields one result per dispatched item and is closed once all
// workers have exited. Each result carries its own path and size.
//
// Cancelling ctx or calling Stop abandons undispatched items and any result
// not yet received.
func (p *Pool) Run(ctx context.Context, backlog []WorkItem) <-chan extractor.Result {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	logging.Info("Starting extraction pool with %d workers", p.workers)
	metrics.IndexerParallelWorkers.Set(float64(p.workers))

	jobs := make(chan WorkItem)
	results := make(chan extractor.Result, p.workers)

	var setupDone sync.WaitGroup
	setupDone.Add(p.workers)

	var g errgroup.Group
	for i := 0; i < p.workers; i++ {
		i := i
		g.Go(func() error {
			p.worker(ctx, i, &setupDone, jobs, results)
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)

		setupDone.Wait()
		if p.ready.Load() == 0 {
			p.setErr(ErrNoWorkers)
			return nil
		}
		p.dispatch(ctx, backlog, jobs)
		return nil
	})

	go func() {
		_ = g.Wait()
		cancel()
		metrics.IndexerParallelWorkers.Set(0)
		close(results)
	}()

	return results
}

func (p *Pool) dispatch(ctx context.Context, backlog []WorkItem, jobs chan<- WorkItem) {
	for _, item := range backlog {
		if p.memory != nil {
			if err := p.memory.Wait(ctx); err != nil {
				return
			}
		}
		select {
		case jobs <- item:
		case <-ctx.Done():
			return
		}
	}
}

func (p *Pool) worker(ctx context.Context, id int, setupDone *sync.WaitGroup, jobs <-chan WorkItem, results chan<- extractor.Result) {
	log := logging.With("worker", id)

	ext, err := p.prepare(id)
	if err != nil {
		metrics.IndexerWorkerSetupFailures.Inc()
		log.Errorf("Worker setup failed: %v", err)
		setupDone.Done()
		return
	}
	p.ready.Add(1)
	setupDone.Done()

	log.Debugf("Worker started")

	handled := 0
	for item := range jobs {
		if ctx.Err() != nil {
			log.Debugf("Worker stopped after %d files", handled)
			return
		}

		res := ext.Extract(ctx, item.Path)
		if res.Path == "" {
			res.Path = item.Path
		}
		if res.Size == 0 {
			res.Size = item.Size
		}
		handled++

		select {
		case results <- res:
		case <-ctx.Done():
			log.Debugf("Worker stopped after %d files", handled)
			return
		}
	}

	log.Debugf("Worker finished after %d files", handled)
}

// prepare runs setup, converting a panic into a setup error.
func (p *Pool) prepare(id int) (ext Extractor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("setup panicked: %v", r)
		}
	}()
	start := time.Now()
	ext, err = p.setup(id)
	if err == nil && ext == nil {
		err = errors.New("setup returned no extractor")
	}
	logging.Debug("Worker %d setup took %v", id, time.Since(start))
	return ext, err
}

func (p *Pool) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
	}
}

// Stop cancels the run. Workers exit after their current file.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Err returns a pool-level failure. It is only meaningful once the result
// channel has been closed.
func (p *Pool) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
