// Command media-indexer extracts metadata from every file under a directory
// and ingests one document per file into a document store.
//
// # Usage
//
//	media-indexer run <root_directory> [--truncate] [--store-uri=<uri>] [--config=<file>]
//	media-indexer version
//
// The run enumerates the backlog first, then hands each file to a pool of
// extraction workers (one per CPU, at most 8). Successful documents are
// written to the store in batches of BATCH_SIZE; a failed batch is counted
// as failed files and the run continues.
//
// # Store
//
// STORE_URI (or --store-uri) selects the backend:
//
//	sqlite://./media.db          SQLite file, created on first use (default)
//	/var/lib/media.db            bare paths are SQLite too
//	postgres://user:pw@host/db   PostgreSQL
//
// Documents go to the "content" table. --truncate deletes every stored
// document before enumeration; without it the run appends.
//
// # Output
//
// Per-file progress and batch commits are printed to stdout, coloured when
// stdout is a terminal and NO_COLOR is unset. Diagnostics and the final
// summary go to stderr. Set DEBUG=1 or LOG_LEVEL=debug for store queries
// and per-probe detail.
//
// # Exit Codes
//
//	0  the run completed
//	1  invalid arguments or configuration, an unreachable store, a fatal
//	   pool error, or an interrupted run (SIGINT, SIGTERM)
//
// Interrupted runs do not flush buffered documents.
//
// # Environment
//
// Run "media-indexer run --help" for the full list of environment variables.
package main
