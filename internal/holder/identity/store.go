package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/logging"
)

// Store is the identity store used by the login sub-flow, the handshake and
// the holder console. Absence of a username is reported as a zero value,
// never as an error; only Create fails on a domain condition (ErrConflict).
type Store struct {
	repo  Repository
	creds Credentials
	log   logging.Logger
	now   func() time.Time
}

func NewStore(repo Repository, creds Credentials, log logging.Logger) *Store {
	if creds == nil {
		creds = PlainCredentials{}
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Store{repo: repo, creds: creds, log: log.With("module", "identity"), now: time.Now}
}

func (s *Store) lookup(ctx context.Context, username string) (*Identity, error) {
	i, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup %q: %w", username, err)
	}
	return i, nil
}

// Exists reports whether username is registered.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	i, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	return i != nil, nil
}

// Create registers username with the given credential. The nickname starts
// out equal to the username.
func (s *Store) Create(ctx context.Context, username, credential string) (*Identity, error) {
	if common.Blank(username) || credential == "" {
		return nil, common.ErrValidation
	}

	sealed, err := s.creds.Seal(credential)
	if err != nil {
		return nil, fmt.Errorf("seal credential: %w", err)
	}

	i, err := s.repo.Insert(ctx, &Identity{
		Username:            username,
		Credential:          sealed,
		Nickname:            username,
		LastAuthenticatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("create %q: %w", username, err)
	}

	s.log.Info(ctx, "identity created", "username", username)
	return i, nil
}

// Verify reports whether username exists and credential matches its stored
// credential.
func (s *Store) Verify(ctx context.Context, username, credential string) (bool, error) {
	i, err := s.lookup(ctx, username)
	if err != nil {
		return false, err
	}
	if i == nil {
		return false, nil
	}
	return s.creds.Match(i.Credential, credential), nil
}

// TouchLogin stamps the current time as the last successful login.
func (s *Store) TouchLogin(ctx context.Context, username string) error {
	if _, err := s.repo.UpdateLastLogin(ctx, username, s.now()); err != nil {
		return fmt.Errorf("touch login %q: %w", username, err)
	}
	return nil
}

// Nickname returns the stored nickname, falling back to the username when
// the row is missing, the nickname is empty, or the lookup fails.
func (s *Store) Nickname(ctx context.Context, username string) string {
	i, err := s.lookup(ctx, username)
	if err != nil {
		s.log.Warn(ctx, "nickname lookup failed", "username", username, "error", err)
		return username
	}
	if i == nil || strings.TrimSpace(i.Nickname) == "" {
		return username
	}
	return i.Nickname
}

func (s *Store) UpdateNickname(ctx context.Context, username, nickname string) (bool, error) {
	ok, err := s.repo.UpdateNickname(ctx, username, nickname)
	if err != nil {
		return false, fmt.Errorf("update nickname %q: %w", username, err)
	}
	return ok, nil
}

func (s *Store) UpdatePassword(ctx context.Context, username, credential string) (bool, error) {
	if credential == "" {
		return false, common.ErrValidation
	}
	sealed, err := s.creds.Seal(credential)
	if err != nil {
		return false, fmt.Errorf("seal credential: %w", err)
	}
	ok, err := s.repo.UpdateCredential(ctx, username, sealed)
	if err != nil {
		return false, fmt.Errorf("update password %q: %w", username, err)
	}
	return ok, nil
}

func (s *Store) UpdateAvatar(ctx context.Context, username, ref string) (bool, error) {
	ok, err := s.repo.UpdateAvatar(ctx, username, ref)
	if err != nil {
		return false, fmt.Errorf("update avatar %q: %w", username, err)
	}
	return ok, nil
}

// Get returns the identity for username, or nil when absent.
func (s *Store) Get(ctx context.Context, username string) (*Identity, error) {
	return s.lookup(ctx, username)
}

// ListAll returns every identity, most recently authenticated first.
func (s *Store) ListAll(ctx context.Context) ([]Identity, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return list, nil
}
