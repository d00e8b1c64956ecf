package database

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	homedir "github.com/mitchellh/go-homedir"
)

// Dialect identifies the SQL flavour behind a store URI.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultURI is used when no store URI is configured.
const DefaultURI = "sqlite://./media.db"

// Target is a parsed store URI.
type Target struct {
	Dialect Dialect
	// DSN is the path for SQLite and the original URI for Postgres.
	DSN string
}

// ParseURI resolves a store URI. Accepted forms are sqlite://<path>,
// file:<path>, a bare filesystem path, and postgres:// or postgresql:// URLs.
// A leading ~ in SQLite paths is expanded to the home directory.
func ParseURI(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultURI
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Target{}, errors.Wrap(err, "invalid postgres URI")
		}
		if u.Host == "" {
			return Target{}, errors.Newf("postgres URI %q has no host", redact(raw))
		}
		return Target{Dialect: DialectPostgres, DSN: raw}, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqliteTarget(raw[len("sqlite://"):])
	case strings.HasPrefix(lower, "sqlite3://"):
		return sqliteTarget(raw[len("sqlite3://"):])
	case strings.HasPrefix(lower, "file:"):
		return sqliteTarget(strings.TrimPrefix(raw[len("file:"):], "//"))
	case strings.Contains(raw, "://"):
		return Target{}, errors.Newf("unsupported store URI scheme in %q", redact(raw))
	default:
		return sqliteTarget(raw)
	}
}

func sqliteTarget(path string) (Target, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return Target{}, errors.New("sqlite URI has no path")
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Target{}, errors.Wrapf(err, "expanding %s", path)
	}
	return Target{Dialect: DialectSQLite, DSN: filepath.Clean(expanded)}, nil
}

// String renders the target for logs, with any password removed.
func (t Target) String() string {
	if t.Dialect == DialectPostgres {
		return redact(t.DSN)
	}
	return string(t.Dialect) + "://" + t.DSN
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
