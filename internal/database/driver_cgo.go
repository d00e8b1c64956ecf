//go:build cgo && !purego

package database

import (
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is the cgo SQLite driver. Built with CGO_ENABLED=0 or the
// purego tag, the pure Go driver is used instead.
var sqliteDriver = &sqlite3.SQLiteDriver{}

// sqliteDSN enables WAL and a busy timeout so the metrics collector can read
// while a batch is committing.
func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", path)
}
