package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultHandleService_SaveVaultHandle(t *testing.T) {
	t.Parallel()

	t.Run("stores handle and sets granted time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)
		ctx := context.Background()

		handle := &chatvault.VaultHandle{Name: chatvault.VaultHandleName, Path: "/home/me/vault"}
		err := svc.SaveVaultHandle(ctx, handle)
		require.NoError(t, err)
		assert.False(t, handle.GrantedAt.IsZero())

		found, err := svc.FindVaultHandle(ctx, chatvault.VaultHandleName)
		require.NoError(t, err)
		assert.Equal(t, "/home/me/vault", found.Path)
		assert.WithinDuration(t, handle.GrantedAt, found.GrantedAt, time.Second)
	})

	t.Run("replaces existing handle with same name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)
		ctx := context.Background()

		require.NoError(t, svc.SaveVaultHandle(ctx, &chatvault.VaultHandle{Name: "vault", Path: "/old"}))
		require.NoError(t, svc.SaveVaultHandle(ctx, &chatvault.VaultHandle{Name: "vault", Path: "/new"}))

		found, err := svc.FindVaultHandle(ctx, "vault")
		require.NoError(t, err)
		assert.Equal(t, "/new", found.Path)
	})

	t.Run("returns EINVALID for missing path", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)

		err := svc.SaveVaultHandle(context.Background(), &chatvault.VaultHandle{Name: "vault"})

		assert.Equal(t, chatvault.EINVALID, chatvault.ErrorCode(err))
	})
}

func TestVaultHandleService_FindVaultHandle(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND when nothing was granted", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)

		_, err := svc.FindVaultHandle(context.Background(), chatvault.VaultHandleName)

		assert.Equal(t, chatvault.ENOTFOUND, chatvault.ErrorCode(err))
	})
}

func TestVaultHandleService_DeleteVaultHandle(t *testing.T) {
	t.Parallel()

	t.Run("removes handle", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)
		ctx := context.Background()

		require.NoError(t, svc.SaveVaultHandle(ctx, &chatvault.VaultHandle{Name: "vault", Path: "/v"}))
		require.NoError(t, svc.DeleteVaultHandle(ctx, "vault"))

		_, err := svc.FindVaultHandle(ctx, "vault")
		assert.Equal(t, chatvault.ENOTFOUND, chatvault.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing handle", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewVaultHandleService(db)

		err := svc.DeleteVaultHandle(context.Background(), "vault")

		assert.Equal(t, chatvault.ENOTFOUND, chatvault.ErrorCode(err))
	})
}
