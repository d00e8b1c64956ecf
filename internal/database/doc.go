// Package database stores extracted documents in SQLite or PostgreSQL.
//
// The store URI selects the backend: sqlite://<path>, file:<path> or a bare
// path open a local SQLite file in WAL mode, and postgres:// URLs connect to
// a PostgreSQL server. The schema is applied on open with embedded goose
// migrations, one set per dialect.
//
// Each document is kept whole as JSON (JSONB on PostgreSQL) next to a few
// indexed columns used for counting. InsertMany writes a batch inside one
// transaction so a batch is either fully stored or not at all.
package database
