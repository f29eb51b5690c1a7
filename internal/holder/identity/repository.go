package identity

import (
	"context"
	"time"
)

// Repository persists identities. Update methods report whether a row was
// affected; a missing username is not an error.
type Repository interface {
	Insert(ctx context.Context, i *Identity) (*Identity, error)
	GetByUsername(ctx context.Context, username string) (*Identity, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) (bool, error)
	UpdateNickname(ctx context.Context, username, nickname string) (bool, error)
	UpdateCredential(ctx context.Context, username, credential string) (bool, error)
	UpdateAvatar(ctx context.Context, username, ref string) (bool, error)
	List(ctx context.Context) ([]Identity, error)
}
