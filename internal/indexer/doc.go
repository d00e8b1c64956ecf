// Package indexer runs the extraction and ingestion pipeline for one
// directory tree.
//
// A run moves through Enumerating, Processing and Draining and ends in
// Completed, Interrupted or FatalError:
//
//   - [BuildBacklog] walks the root, skipping hidden entries, and returns
//     every file with its size before any work starts, so progress can be
//     reported against a known total.
//   - [Pool] hands the backlog to at most eight workers. Each worker runs a
//     [SetupFunc] once and then extracts files until the backlog is empty.
//     Results arrive in completion order and carry their own path and size.
//   - The coordinator folds each result into a [Tracker] and passes
//     documents to an [Accumulator], which writes them in batches of
//     [DefaultBatchSize]. A failed batch is counted as failed and dropped.
//   - When the result stream ends the partial batch is written and the run
//     completes. Cancelling the run context stops the pool at once and the
//     buffered documents are discarded.
//
// Progress goes to a [Reporter]; [Console] prints one line per file and per
// batch and a final summary.
package indexer
