// Package session keeps the holder's singleton session record: whether a user
// is signed in, who, and which username to offer as the next login hint.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/dbx"
	"github.com/dmitrijs2005/quickauth/internal/logging"
)

// Persisted keys.
const (
	KeyIsLoggedIn   = "is_logged_in"
	KeyCurrentUser  = "current_user"
	KeyLastUsername = "last_username"
	KeySignature    = "user_signature"
)

type Session struct {
	IsAuthenticated bool
	CurrentUser     string
	LastUsername    string
}

// State is the durable session record. Multi-key writes run in one
// transaction under the write lock so readers never see a partial login.
type State struct {
	mu      sync.RWMutex
	db      *sql.DB
	dialect dbx.Dialect
	log     logging.Logger
}

func NewState(db *sql.DB, dialect dbx.Dialect, log logging.Logger) *State {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &State{db: db, dialect: dialect, log: log.With("module", "session")}
}

func (s *State) repo(db dbx.DBTX) Repository {
	return NewSQLRepository(db, s.dialect)
}

// Get returns the current session. A fresh installation yields the zero
// Session.
func (s *State) Get(ctx context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kv, err := s.repo(s.db).List(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	sess := Session{
		IsAuthenticated: kv[KeyIsLoggedIn] == "true",
		CurrentUser:     kv[KeyCurrentUser],
		LastUsername:    kv[KeyLastUsername],
	}
	if sess.CurrentUser == "" {
		sess.IsAuthenticated = false
	}
	return sess, nil
}

// RecordLogin marks username as the signed-in user and the next login hint.
func (s *State) RecordLogin(ctx context.Context, username string) error {
	if common.Blank(username) {
		return common.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, KeyIsLoggedIn, "true"); err != nil {
			return err
		}
		if err := r.Set(ctx, KeyCurrentUser, username); err != nil {
			return err
		}
		return r.Set(ctx, KeyLastUsername, username)
	})
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	s.log.Info(ctx, "session recorded", "username", username)
	return nil
}

// Logout clears the signed-in user and keeps the login hint.
func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, KeyIsLoggedIn, "false"); err != nil {
			return err
		}
		return r.Delete(ctx, KeyCurrentUser)
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info(ctx, "session cleared")
	return nil
}

func (s *State) IsAuthenticated(ctx context.Context) (bool, error) {
	sess, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return sess.IsAuthenticated, nil
}

// CurrentUsername returns the signed-in username, or "" when signed out.
func (s *State) CurrentUsername(ctx context.Context) (string, error) {
	sess, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	if !sess.IsAuthenticated {
		return "", nil
	}
	return sess.CurrentUser, nil
}

func (s *State) Signature(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, _, err := s.repo(s.db).Get(ctx, KeySignature)
	if err != nil {
		return "", fmt.Errorf("read signature: %w", err)
	}
	return v, nil
}

func (s *State) SetSignature(ctx context.Context, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo(s.db).Set(ctx, KeySignature, signature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}
	return nil
}

// EnsureSignature seeds the signature with def when none is stored yet.
func (s *State) EnsureSignature(ctx context.Context, def string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.repo(s.db)
	_, ok, err := r.Get(ctx, KeySignature)
	if err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if ok {
		return nil
	}
	if err := r.Set(ctx, KeySignature, def); err != nil {
		return fmt.Errorf("seed signature: %w", err)
	}
	return nil
}
