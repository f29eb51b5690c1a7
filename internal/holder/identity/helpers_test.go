package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/dbx"
	"github.com/dmitrijs2005/quickauth/internal/holder/migrations"
	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := dbx.Open(ctx, "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db, dialect))
	return db
}

// fakeClock advances one second per call so ordering by last login is stable.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T, creds Credentials) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(NewSQLiteRepository(openTestDB(t)), creds, logging.NopLogger{})
	s.now = clock.Now
	return s, clock
}
