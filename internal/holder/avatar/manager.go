package avatar

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/filex"
	"github.com/dmitrijs2005/quickauth/internal/holder/identity"
)

// MaxImageSize bounds avatar uploads.
const MaxImageSize = 2 << 20

type Storage interface {
	Upload(ctx context.Context, username string, data []byte, contentType string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type Identities interface {
	Get(ctx context.Context, username string) (*identity.Identity, error)
	UpdateAvatar(ctx context.Context, username, ref string) (bool, error)
}

// Manager ties stored images to identities.
type Manager struct {
	storage    Storage
	identities Identities
}

// NewManager returns a Manager; a nil storage disables avatars.
func NewManager(storage Storage, identities Identities) *Manager {
	return &Manager{storage: storage, identities: identities}
}

func (m *Manager) Enabled() bool { return m.storage != nil }

// SetFromFile uploads the image at path and records it for username.
func (m *Manager) SetFromFile(ctx context.Context, username, path string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}

	data, contentType, err := filex.ReadFileLimited(path, MaxImageSize)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, contentType)
	}

	key, err := m.storage.Upload(ctx, username, data, contentType)
	if err != nil {
		return "", err
	}

	ok, err := m.identities.UpdateAvatar(ctx, username, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no identity %q", username)
	}
	return key, nil
}

// URL returns a presigned URL for username's avatar, or "" when none is set.
func (m *Manager) URL(ctx context.Context, username string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}

	i, err := m.identities.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if i == nil || i.AvatarRef == "" {
		return "", nil
	}
	return m.storage.URL(ctx, i.AvatarRef)
}
