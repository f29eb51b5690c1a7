package migrations

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/quickauth/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestUp_SQLiteCreatesTables(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Up(ctx, db, dbx.DialectSQLite))
	// idempotent
	require.NoError(t, Up(ctx, db, dbx.DialectSQLite))

	for _, table := range []string{"users", "session_state"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	_, err = db.Exec(`INSERT INTO users (username, password, nickname, last_login) VALUES ('a', 'p', 'a', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, password, nickname, last_login) VALUES ('a', 'q', 'a', 2)`)
	assert.True(t, dbx.IsUniqueViolation(err), "username must be unique, got %v", err)
}

func TestUp_UnsupportedDialect(t *testing.T) {
	err := Up(context.Background(), nil, dbx.Dialect("oracle"))
	require.Error(t, err)
}

func TestUp_WrapsGooseError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return errors.New("boom")
	}

	err := Up(context.Background(), nil, dbx.DialectPostgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate: boom")
	assert.Equal(t, "postgres", gotDir)
}
