package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect identifies the SQL flavour behind a *sql.DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// ParseDSN maps a configured DSN to a database/sql driver name, the dialect
// and the driver-specific data source.
//
//	postgres://... or postgresql://...  -> pgx
//	sqlite:<path>                       -> sqlite, <path>
//	anything else                       -> sqlite, as is
func ParseDSN(dsn string) (driver string, dialect Dialect, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", DialectPostgres, dsn
	case strings.HasPrefix(dsn, "sqlite:"):
		return "sqlite", DialectSQLite, strings.TrimPrefix(dsn, "sqlite:")
	default:
		return "sqlite", DialectSQLite, dsn
	}
}

// Open opens and pings the database behind dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, Dialect, error) {
	driver, dialect, source := ParseDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping db: %w", err)
	}

	if dialect == DialectSQLite {
		// modernc sqlite does not support concurrent writers on one file.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			_ = db.Close()
			return nil, "", fmt.Errorf("set busy timeout: %w", err)
		}
	}

	return db, dialect, nil
}

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY
// constraint, for both the sqlite and the pgx driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax
// ($1, $2, ... for postgres). Queries must not contain literal question marks.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
