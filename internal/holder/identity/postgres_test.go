package identity

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestPostgresInsert_Success(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password,\s*nickname,\s*avatar_uri,\s*last_login\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id$`
	at := time.UnixMilli(1_700_000_000_000)

	mock.ExpectQuery(q).
		WithArgs("alice", "pw", "alice", sql.NullString{}, at.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	got, err := repo.Insert(context.Background(), &Identity{Username: "alice", Credential: "pw", Nickname: "alice", LastAuthenticatedAt: at})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsert_UniqueViolation(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Insert(context.Background(), &Identity{Username: "alice", Credential: "pw"})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestPostgresInsert_DBError(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &Identity{Username: "alice", Credential: "pw"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestPostgresGetByUsername(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*username,\s*password,\s*nickname,\s*avatar_uri,\s*last_login\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`

	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar_uri", "last_login"}).
			AddRow(int64(1), "alice", "pw", nil, "users/x", int64(0)))

	i, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "", i.Nickname)
	assert.Equal(t, "users/x", i.AvatarRef)
	assert.True(t, i.LastAuthenticatedAt.IsZero())

	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresUpdateNickname(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	q := `^UPDATE\s+users\s+SET\s+nickname\s*=\s*\$1\s+WHERE\s+username\s*=\s*\$2$`

	mock.ExpectExec(q).WithArgs("Al", "alice").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.UpdateNickname(context.Background(), "alice", "Al")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(q).WithArgs("Al", "ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.UpdateNickname(context.Background(), "ghost", "Al")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(q).WithArgs("Al", "alice").WillReturnError(errors.New("boom"))
	_, err = repo.UpdateNickname(context.Background(), "alice", "Al")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	repo, mock, _ := newPostgresRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+.+\s+FROM\s+users\s+ORDER\s+BY\s+last_login\s+DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "nickname", "avatar_uri", "last_login"}).
			AddRow(int64(2), "b", "p", "B", nil, int64(2000)).
			AddRow(int64(1), "a", "p", "A", nil, int64(1000)))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Username)
	assert.Equal(t, "A", list[1].Nickname)
}
