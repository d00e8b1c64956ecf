package indexer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"media-indexer/internal/database"
	"media-indexer/internal/extractor"
	"media-indexer/internal/logging"
	"media-indexer/internal/memory"
	"media-indexer/internal/metrics"
)

// State is a run's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateEnumerating
	StateProcessing
	StateDraining
	StateCompleted
	StateInterrupted
	StateFatalError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumerating:
		return "enumerating"
	case StateProcessing:
		return "processing"
	case StateDraining:
		return "draining"
	case StateCompleted:
		return "completed"
	case StateInterrupted:
		return "interrupted"
	case StateFatalError:
		return "fatal_error"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ExitCode maps a terminal state to a process exit status.
func (s State) ExitCode() int {
	if s == StateCompleted {
		return 0
	}
	return 1
}

var (
	// ErrInvalidRoot marks a root that does not exist or is not a directory.
	ErrInvalidRoot = errors.New("invalid root directory")
	// ErrInterrupted is returned when the run context ends mid-run.
	ErrInterrupted = errors.New("run interrupted")
)

// Store is the persistence the coordinator needs.
type Store interface {
	BatchWriter
	DeleteMany(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type typeCounter interface {
	CountByContentType(ctx context.Context) ([]database.ContentTypeCount, error)
}

// Config configures an Indexer.
type Config struct {
	RunID     string
	Workers   int
	BatchSize int
	// Truncate clears the store before enumeration.
	Truncate bool
	Memory   *memory.Monitor
	Reporter Reporter
}

// Status is the externally visible state of the current run.
type Status struct {
	RunID    string   `json:"run_id"`
	State    string   `json:"state"`
	Root     string   `json:"root,omitempty"`
	Workers  int      `json:"workers"`
	Progress Snapshot `json:"progress"`
}

// Indexer owns one run: it enumerates the backlog, drives the pool and
// routes results to the tracker and the accumulator. All store writes are
// issued from the goroutine calling Run.
type Indexer struct {
	cfg   Config
	store Store
	setup SetupFunc
	rep   Reporter

	state atomic.Int32

	mu      sync.Mutex
	root    string
	workers int
	tracker *Tracker
}

// New returns an Indexer writing to store, preparing workers with setup.
func New(cfg Config, store Store, setup SetupFunc) *Indexer {
	rep := cfg.Reporter
	if rep == nil {
		rep = nopReporter{}
	}
	return &Indexer{cfg: cfg, store: store, setup: setup, rep: rep}
}

// State returns the current lifecycle state.
func (ix *Indexer) State() State {
	return State(ix.state.Load())
}

func (ix *Indexer) setState(s State) {
	old := State(ix.state.Swap(int32(s)))
	if old != s {
		logging.Debug("Indexer state: %s -> %s", old, s)
	}
}

// Status returns a snapshot safe to read from any goroutine.
func (ix *Indexer) Status() Status {
	ix.mu.Lock()
	root, workers, tracker := ix.root, ix.workers, ix.tracker
	ix.mu.Unlock()

	st := Status{RunID: ix.cfg.RunID, State: ix.State().String(), Root: root, Workers: workers}
	if tracker != nil {
		st.Progress = tracker.Latest()
	}
	return st
}

// ValidateRoot checks that root exists and is a directory.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.WithHint(
			errors.Mark(errors.Wrapf(err, "cannot access %s", root), ErrInvalidRoot),
			"pass an existing directory as the root")
	}
	if !info.IsDir() {
		return errors.WithHint(
			errors.Wrapf(ErrInvalidRoot, "%s is not a directory", root),
			"pass an existing directory as the root")
	}
	return nil
}

// Run indexes every file below root and returns the terminal state. The
// error is nil only for StateCompleted. Cancelling ctx interrupts the run:
// the pool is stopped and buffered documents are not written.
func (ix *Indexer) Run(ctx context.Context, root string) (state State, err error) {
	start := time.Now()
	metrics.IndexerIsRunning.Set(1)
	defer func() {
		metrics.IndexerIsRunning.Set(0)
		metrics.IndexerLastRunDuration.Set(time.Since(start).Seconds())
		metrics.IndexerRunsTotal.WithLabelValues(state.String()).Inc()
		ix.setState(state)
	}()

	stats := &RunStatistics{RunID: ix.cfg.RunID, Started: start}

	if err := ValidateRoot(root); err != nil {
		return ix.finish(ctx, StateFatalError, stats, 0, err)
	}

	ix.mu.Lock()
	ix.root = root
	ix.mu.Unlock()

	if ix.cfg.Truncate {
		n, err := ix.store.DeleteMany(ctx)
		if err != nil {
			err = errors.Wrap(err, "truncating store")
			if ctx.Err() != nil {
				return ix.finish(ctx, StateInterrupted, stats, 0, errors.Mark(err, ErrInterrupted))
			}
			return ix.finish(ctx, StateFatalError, stats, 0, err)
		}
		logging.Info("Truncated store: removed %d documents", n)
	}

	ix.setState(StateEnumerating)
	tracker := NewTracker(stats)

	backlog, err := BuildBacklog(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return ix.finish(ctx, StateInterrupted, stats, 0, errors.Mark(err, ErrInterrupted))
		}
		return ix.finish(ctx, StateFatalError, stats, 0, err)
	}
	stats.Discovered = len(backlog)
	tracker.Snapshot()

	acc := NewAccumulator(ix.store, ix.cfg.BatchSize, stats, ix.rep)
	pool := NewPool(PoolConfig{Workers: ix.cfg.Workers, Memory: ix.cfg.Memory}, ix.setup)

	ix.mu.Lock()
	ix.workers = pool.Workers()
	ix.tracker = tracker
	ix.mu.Unlock()

	ix.setState(StateProcessing)
	results := pool.Run(ctx, backlog)

	if err := ix.consume(ctx, results, tracker, acc); err != nil {
		pool.Stop()
		discarded := acc.Discard()
		if errors.Is(err, ErrInterrupted) {
			return ix.finish(ctx, StateInterrupted, stats, discarded, err)
		}
		return ix.finish(ctx, StateFatalError, stats, discarded, err)
	}

	if err := pool.Err(); err != nil {
		return ix.finish(ctx, StateFatalError, stats, acc.Discard(), err)
	}
	if ctx.Err() != nil {
		return ix.finish(ctx, StateInterrupted, stats, acc.Discard(), ErrInterrupted)
	}

	ix.setState(StateDraining)
	acc.FlushRemaining(ctx)
	tracker.Snapshot()
	if ctx.Err() != nil {
		return ix.finish(ctx, StateInterrupted, stats, 0, ErrInterrupted)
	}

	return ix.finish(ctx, StateCompleted, stats, 0, nil)
}

// consume drains results until the pool closes the channel or ctx ends. A
// panic while handling a result is returned as an error.
func (ix *Indexer) consume(ctx context.Context, results <-chan extractor.Result, tracker *Tracker, acc *Accumulator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("result loop panicked: %v", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		case res, ok := <-results:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return ErrInterrupted
			}

			tracker.Record(res)
			if res.Status == extractor.StatusSuccess {
				acc.Add(res.Document)
				acc.MaybeFlush(ctx)
			}
			ix.rep.FileDone(res, tracker.Snapshot())
		}
	}
}

func (ix *Indexer) finish(ctx context.Context, state State, stats *RunStatistics, discarded int, err error) (State, error) {
	summary := Summary{
		State:     state,
		Stats:     *stats,
		Elapsed:   time.Since(stats.Started),
		Documents: -1,
		Discarded: discarded,
		Err:       err,
	}

	// The run context may already be cancelled; the count is still wanted.
	countCtx := context.WithoutCancel(ctx)
	if n, cerr := ix.store.Count(countCtx); cerr != nil {
		logging.Warn("Could not count stored documents: %v", cerr)
	} else {
		summary.Documents = n
	}
	if tc, ok := ix.store.(typeCounter); ok && logging.IsDebugEnabled() {
		if counts, cerr := tc.CountByContentType(countCtx); cerr == nil {
			for _, c := range counts {
				logging.Debug("Stored %s: %d", c.ContentType, c.Count)
			}
		}
	}

	switch state {
	case StateCompleted:
		logging.Info("Run %s completed: %d processed, %d succeeded, %d failed, %d skipped",
			stats.RunID, stats.Processed, stats.Succeeded, stats.Failed, stats.Skipped)
	case StateInterrupted:
		logging.Warn("Run %s interrupted after %d of %d files", stats.RunID, stats.Processed, stats.Discovered)
	default:
		logging.Error("Run %s failed: %v", stats.RunID, err)
	}

	ix.rep.Finished(summary)
	return state, err
}
