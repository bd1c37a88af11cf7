package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/config"
	"projecttracker/internal/db"
	"projecttracker/internal/model"
)

func setupRepo(t *testing.T) *CredentialRepository {
	t.Helper()
	ctx := context.Background()
	gdb, release, err := db.Open(ctx, config.DBConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(release)
	require.NoError(t, db.Bootstrap(ctx, gdb))
	return NewCredentialRepository(gdb, zap.NewNop())
}

func TestCreateAndFind(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	c := &model.Credential{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestCreateDuplicate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Credential{Username: "alice", PasswordHash: "one"}))
	err := repo.Create(ctx, &model.Credential{Username: "alice", PasswordHash: "two"})
	assert.ErrorIs(t, err, ErrDuplicate)

	n, err := repo.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "one", got.PasswordHash)
}

func TestFindUnknown(t *testing.T) {
	repo := setupRepo(t)
	_, err := repo.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
