package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/dbx"
)

// SQLRepository stores identities in the users table. The same queries serve
// sqlite and postgres; placeholders are rebound per dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.DialectSQLite)
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return NewSQLRepository(db, dbx.DialectPostgres)
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

func (r *SQLRepository) Insert(ctx context.Context, i *Identity) (*Identity, error) {
	query := r.q(`INSERT INTO users (username, password, nickname, avatar_uri, last_login)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		i.Username, i.Credential, i.Nickname, nullable(i.AvatarRef), toMillis(i.LastAuthenticatedAt)).Scan(&i.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return i, nil
}

func (r *SQLRepository) GetByUsername(ctx context.Context, username string) (*Identity, error) {
	query := r.q(`SELECT id, username, password, nickname, avatar_uri, last_login FROM users
		WHERE username = ?`)

	i, err := scanIdentity(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return i, nil
}

func (r *SQLRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) (bool, error) {
	return r.exec(ctx, `UPDATE users SET last_login = ? WHERE username = ?`, toMillis(at), username)
}

func (r *SQLRepository) UpdateNickname(ctx context.Context, username, nickname string) (bool, error) {
	return r.exec(ctx, `UPDATE users SET nickname = ? WHERE username = ?`, nickname, username)
}

func (r *SQLRepository) UpdateCredential(ctx context.Context, username, credential string) (bool, error) {
	return r.exec(ctx, `UPDATE users SET password = ? WHERE username = ?`, credential, username)
}

func (r *SQLRepository) UpdateAvatar(ctx context.Context, username, ref string) (bool, error) {
	return r.exec(ctx, `UPDATE users SET avatar_uri = ? WHERE username = ?`, nullable(ref), username)
}

func (r *SQLRepository) List(ctx context.Context) ([]Identity, error) {
	query := `SELECT id, username, password, nickname, avatar_uri, last_login FROM users
		ORDER BY last_login DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func (r *SQLRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentity(s scanner) (*Identity, error) {
	var (
		i        Identity
		nickname sql.NullString
		avatar   sql.NullString
		last     int64
	)
	if err := s.Scan(&i.ID, &i.Username, &i.Credential, &nickname, &avatar, &last); err != nil {
		return nil, err
	}
	i.Nickname = nickname.String
	i.AvatarRef = avatar.String
	i.LastAuthenticatedAt = fromMillis(last)
	return &i, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// last_login is stored as Unix milliseconds; zero means never.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
