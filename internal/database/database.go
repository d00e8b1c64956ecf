package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	sqldblogger "github.com/simukti/sqldb-logger"

	"media-indexer/internal/extractor"
	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

// Default timeout for connection checks and counting queries.
const defaultTimeout = 5 * time.Second

// TableName is the collection every document is written to.
const TableName = "content"

// maxRowsPerStatement bounds a single multi-row INSERT so large batches stay
// under SQLite's bound-parameter limit. A batch is still one transaction.
const maxRowsPerStatement = 150

//go:embed migrations
var migrations embed.FS

// goose keeps its dialect and filesystem in package state.
var migrateMu sync.Mutex

// Store persists documents into the content table.
type Store struct {
	db      *sqlx.DB
	target  Target
	builder sq.StatementBuilderType
}

// row is the relational projection of a document. The full document is kept
// as JSON; the other columns exist for indexing and counting.
type row struct {
	RunID       string `db:"run_id"`
	FilePath    string `db:"file_path"`
	ContentType string `db:"content_type"`
	Size        int64  `db:"size"`
	Document    string `db:"document"`
}

var insertColumns = []string{"run_id", "file_path", "content_type", "size", "document"}

const insertNamed = "INSERT INTO " + TableName +
	" (run_id, file_path, content_type, size, document) VALUES (:run_id, :file_path, :content_type, :size, :document)"

// Open connects to the store named by uri, applies pending migrations and
// verifies the connection.
func Open(ctx context.Context, uri string) (*Store, error) {
	target, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	logging.Info("Store: %s", target)

	var (
		drv      driver.Driver
		dsn      string
		bindName string
	)
	switch target.Dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(target.DSN), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating database directory")
		}
		if err := diagnoseDatabasePermissions(target.DSN); err != nil {
			logging.Warn("Database permission diagnostics: %v", err)
		}
		drv, dsn, bindName = sqliteDriver, sqliteDSN(target.DSN), "sqlite3"
	case DialectPostgres:
		drv, dsn, bindName = &pq.Driver{}, target.DSN, "postgres"
	default:
		return nil, errors.Newf("unsupported dialect %q", target.Dialect)
	}

	raw := sqldblogger.OpenDriver(dsn, drv, queryLogger{},
		sqldblogger.WithMinimumLevel(queryLogLevel()),
	)

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := raw.PingContext(pingCtx); err != nil {
		if closeErr := raw.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, errors.Wrapf(err, "failed to connect to %s", target)
	}

	if target.Dialect == DialectSQLite {
		// One writer at a time; readers come from the metrics collector.
		raw.SetMaxOpenConns(4)
		raw.SetMaxIdleConns(2)
	} else {
		raw.SetMaxOpenConns(10)
		raw.SetMaxIdleConns(5)
	}
	raw.SetConnMaxLifetime(time.Hour)

	if err := migrate(raw, target.Dialect); err != nil {
		if closeErr := raw.Close(); closeErr != nil {
			logging.Error("failed to close database after migration failure: %v", closeErr)
		}
		return nil, err
	}

	logging.Info("Store initialized successfully (%s)", target.Dialect)
	return newStore(sqlx.NewDb(raw, bindName), target), nil
}

func newStore(db *sqlx.DB, target Target) *Store {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if target.Dialect == DialectPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Store{db: db, target: target, builder: builder}
}

func migrate(db *sql.DB, dialect Dialect) (err error) {
	start := time.Now()
	defer func() { recordQuery("migrate", start, err) }()

	migrateMu.Lock()
	defer migrateMu.Unlock()

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(migrationLogger{})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.Up(db, "migrations/"+string(dialect)); err != nil {
		return errors.Wrap(err, "applying migrations")
	}
	return nil
}

// Target returns the parsed URI the store was opened with.
func (s *Store) Target() Target {
	return s.target
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertOne writes a single document.
func (s *Store) InsertOne(ctx context.Context, doc *extractor.Document) (err error) {
	start := time.Now()
	defer func() { recordQuery("insert_one", start, err) }()

	r, err := toRow(doc)
	if err != nil {
		return err
	}
	query, args, err := s.builder.Insert(TableName).
		Columns(insertColumns...).
		Values(r.RunID, r.FilePath, r.ContentType, r.Size, r.Document).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building insert")
	}
	if _, err = s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "inserting %s", doc.FilePath)
	}
	return nil
}

// InsertMany writes docs in one transaction. Either every document is
// stored or none is.
func (s *Store) InsertMany(ctx context.Context, docs []*extractor.Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { recordQuery("insert_many", start, err) }()

	rows := make([]row, 0, len(docs))
	for _, doc := range docs {
		r, err := toRow(doc)
		if err != nil {
			return err
		}
		rows = append(rows, r)
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for len(rows) > 0 {
			n := min(len(rows), maxRowsPerStatement)
			if _, err := tx.NamedExecContext(ctx, insertNamed, rows[:n]); err != nil {
				return errors.Wrapf(err, "inserting %d documents", n)
			}
			rows = rows[n:]
		}
		return nil
	})
}

// DeleteMany removes every document in the table and returns how many were
// removed.
func (s *Store) DeleteMany(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { recordQuery("delete_many", start, err) }()

	query, args, err := s.builder.Delete(TableName).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building delete")
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "truncating content")
	}
	n, err = res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading affected rows")
	}
	return n, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (n int64, err error) {
	start := time.Now()
	defer func() { recordQuery("count", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args, err := s.builder.Select("COUNT(*)").From(TableName).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building count")
	}
	if err = s.db.QueryRowxContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting documents")
	}
	return n, nil
}

// ContentTypeCount is one row of CountByContentType.
type ContentTypeCount struct {
	ContentType string `db:"content_type"`
	Count       int64  `db:"n"`
}

// CountByContentType returns stored document counts per content type,
// largest first.
func (s *Store) CountByContentType(ctx context.Context) (counts []ContentTypeCount, err error) {
	start := time.Now()
	defer func() { recordQuery("count_by_type", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args, err := s.builder.
		Select("content_type", "COUNT(*) AS n").
		From(TableName).
		GroupBy("content_type").
		OrderBy("n DESC", "content_type").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building count by type")
	}
	if err = s.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, errors.Wrap(err, "counting documents by content type")
	}
	return counts, nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	txStart := time.Now()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	if err := fn(tx); err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(time.Since(txStart).Seconds())
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.CombineErrors(err, errors.Wrap(rbErr, "rollback also failed"))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(time.Since(txStart).Seconds())
		return errors.Wrap(err, "committing transaction")
	}
	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(time.Since(txStart).Seconds())
	return nil
}

func toRow(doc *extractor.Document) (row, error) {
	if doc == nil {
		return row{}, errors.New("nil document")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return row{}, errors.Wrapf(err, "encoding document for %s", doc.FilePath)
	}
	return row{
		RunID:       doc.RunID,
		FilePath:    doc.FilePath,
		ContentType: doc.ContentType,
		Size:        doc.Size(),
		Document:    string(body),
	}, nil
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "cannot stat database directory")
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return errors.Wrap(err, "database directory not writable")
	}
	_ = os.Remove(testFile)
	logging.Debug("Database directory is writable")

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only! Mode: %v - this will cause write failures", path, info.Mode())
		if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", path, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", path)
		}
	}

	return nil
}
