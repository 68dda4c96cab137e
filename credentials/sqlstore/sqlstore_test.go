package sqlstore_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/sqlstore"
	"github.com/jrsteele09/go-store-admin/credentials/storetest"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		s, err := sqlstore.Open(filepath.Join(t.TempDir(), "credentials.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := sqlstore.Open("")
	require.Error(t, err)
}
