package database

import (
	"context"
	"fmt"
	"os"

	sqldblogger "github.com/simukti/sqldb-logger"

	"media-indexer/internal/logging"
)

// queryLogger routes driver-level query logs into the application log.
// Successful statements are only logged when debug logging is enabled.
type queryLogger struct{}

func (queryLogger) Log(_ context.Context, level sqldblogger.Level, msg string, data map[string]any) {
	switch level {
	case sqldblogger.LevelError:
		logging.Warn("db %s failed: %v (query=%v)", msg, data["error"], data["query"])
	case sqldblogger.LevelTrace, sqldblogger.LevelDebug, sqldblogger.LevelInfo:
		logging.Debug("db %s: %v (%vms)", msg, data["query"], data["duration"])
	}
}

func queryLogLevel() sqldblogger.Level {
	if logging.IsDebugEnabled() {
		return sqldblogger.LevelDebug
	}
	return sqldblogger.LevelError
}

// migrationLogger satisfies goose's logger interface.
type migrationLogger struct{}

func (migrationLogger) Fatal(v ...any) {
	logging.Error("migration: %s", fmt.Sprint(v...))
	os.Exit(1)
}

func (migrationLogger) Fatalf(format string, v ...any) {
	logging.Error("migration: "+format, v...)
	os.Exit(1)
}

func (migrationLogger) Print(v ...any) {
	logging.Debug("migration: %s", fmt.Sprint(v...))
}

func (migrationLogger) Println(v ...any) {
	logging.Debug("migration: %s", fmt.Sprint(v...))
}

func (migrationLogger) Printf(format string, v ...any) {
	logging.Debug("migration: "+format, v...)
}
