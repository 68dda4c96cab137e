package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/jrsteele09/go-store-admin/credentials/filestore"
	"github.com/jrsteele09/go-store-admin/credentials/storetest"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) credentials.Store {
		s, err := filestore.NewInFolder(filepath.Join(t.TempDir(), "nested"))
		require.NoError(t, err)
		return s
	})
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := filestore.NewInFolder(dir)
	require.NoError(t, err)
	require.NoError(t, credentials.Save(ctx, first, credentials.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := filestore.NewInFolder(dir)
	require.NoError(t, err)
	creds, err := credentials.Load(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "A1", creds.AccessToken)
	require.Equal(t, "R1", creds.RefreshToken)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := filestore.New(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), credentials.KeyAccessToken)
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt credentials file")
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := filestore.New("")
	require.Error(t, err)
}
