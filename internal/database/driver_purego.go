//go:build !cgo || purego

package database

import (
	"fmt"

	"modernc.org/sqlite"
)

var sqliteDriver = &sqlite.Driver{}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=temp_store(MEMORY)&_pragma=busy_timeout(5000)", path)
}
