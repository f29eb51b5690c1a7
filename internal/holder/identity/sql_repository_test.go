package identity

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepository_InsertAndGet(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()
	at := time.UnixMilli(1_700_000_000_123)

	got, err := repo.Insert(ctx, &Identity{Username: "alice", Credential: "pw", Nickname: "alice", LastAuthenticatedAt: at})
	require.NoError(t, err)
	assert.NotZero(t, got.ID)

	i, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", i.Username)
	assert.Equal(t, "pw", i.Credential)
	assert.Equal(t, "", i.AvatarRef)
	assert.True(t, at.Equal(i.LastAuthenticatedAt))
}

func TestSQLiteRepository_InsertConflict(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &Identity{Username: "alice", Credential: "a"})
	require.NoError(t, err)

	_, err = repo.Insert(ctx, &Identity{Username: "alice", Credential: "b"})
	require.ErrorIs(t, err, common.ErrConflict)

	i, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a", i.Credential, "conflicting insert must not change the row")
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteRepository_Updates(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Insert(ctx, &Identity{Username: "bob", Credential: "x", Nickname: "bob"})
	require.NoError(t, err)

	ok, err := repo.UpdateNickname(ctx, "bob", "Bobby")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateCredential(ctx, "bob", "y")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateAvatar(ctx, "bob", "users/2024/1/1/abc")
	require.NoError(t, err)
	assert.True(t, ok)

	at := time.UnixMilli(1_800_000_000_000)
	ok, err = repo.UpdateLastLogin(ctx, "bob", at)
	require.NoError(t, err)
	assert.True(t, ok)

	i, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bobby", i.Nickname)
	assert.Equal(t, "y", i.Credential)
	assert.Equal(t, "users/2024/1/1/abc", i.AvatarRef)
	assert.True(t, at.Equal(i.LastAuthenticatedAt))

	for _, fn := range []func() (bool, error){
		func() (bool, error) { return repo.UpdateNickname(ctx, "ghost", "n") },
		func() (bool, error) { return repo.UpdateCredential(ctx, "ghost", "n") },
		func() (bool, error) { return repo.UpdateAvatar(ctx, "ghost", "n") },
		func() (bool, error) { return repo.UpdateLastLogin(ctx, "ghost", at) },
	} {
		ok, err := fn()
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestSQLiteRepository_ListOrderedByLastLogin(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	base := time.UnixMilli(1_700_000_000_000)
	for i, name := range []string{"a", "b", "c"} {
		_, err := repo.Insert(ctx, &Identity{Username: name, Credential: "p", LastAuthenticatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}
	_, err := repo.UpdateLastLogin(ctx, "a", base.Add(time.Hour))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "c", "b"}, []string{list[0].Username, list[1].Username, list[2].Username})
}
