// Package storetest holds the behaviour every credentials.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/stretchr/testify/require"
)

// Run exercises store against the credentials.Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, credentials.KeyAccessToken)
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set get overwrite", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, credentials.KeyAccessToken, "A1"))
		require.NoError(t, s.Set(ctx, credentials.KeyAccessToken, "A2"))

		v, ok, err := s.Get(ctx, credentials.KeyAccessToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "A2", v)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, credentials.KeyRefreshToken, "R1"))
		require.NoError(t, s.Remove(ctx, credentials.KeyRefreshToken))
		require.NoError(t, s.Remove(ctx, credentials.KeyRefreshToken))

		_, ok, err := s.Get(ctx, credentials.KeyRefreshToken)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("save keeps refresh token when none returned", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, credentials.Save(ctx, s, credentials.Credentials{AccessToken: "A1", RefreshToken: "R1"}))
		require.NoError(t, credentials.Save(ctx, s, credentials.Credentials{AccessToken: "A2"}))

		creds, err := credentials.Load(ctx, s)
		require.NoError(t, err)
		require.Equal(t, credentials.Credentials{AccessToken: "A2", RefreshToken: "R1"}, creds)
	})

	t.Run("clear removes both tokens", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, credentials.Save(ctx, s, credentials.Credentials{AccessToken: "A1", RefreshToken: "R1"}))
		require.NoError(t, credentials.Clear(ctx, s))

		creds, err := credentials.Load(ctx, s)
		require.NoError(t, err)
		require.True(t, creds.IsZero())
	})
}
