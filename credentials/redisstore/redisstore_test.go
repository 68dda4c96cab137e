package redisstore_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/redisstore"
	"github.com/jrsteele09/go-store-admin/credentials/storetest"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *redisstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := redisstore.New(context.Background(), redisstore.Config{Addr: mr.Addr(), Prefix: "test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		_, s := newTestStore(t)
		return s
	})
}

func TestStore_UsesPrefix(t *testing.T) {
	mr, s := newTestStore(t)
	require.NoError(t, s.Set(context.Background(), credentials.KeyAccessToken, "A1"))

	v, err := mr.Get("test:" + credentials.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "A1", v)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.New(context.Background(), redisstore.Config{Addr: addr})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis ping failed")
}
