package snapshot

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveAndLoad(t *testing.T) {
	store := NewFileStore()
	path := filepath.Join(t.TempDir(), "environment.json")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, path, []byte(`{"periods":[]}`)))

	data, err := store.Load(ctx, path)
	require.NoError(t, err)
	require.JSONEq(t, `{"periods":[]}`, string(data))
}

func TestFileStore_SaveOverwritesAtomically(t *testing.T) {
	store := NewFileStore()
	path := filepath.Join(t.TempDir(), "environment.json")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, path, []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, path, []byte(`{"v":2}`)))

	data, err := store.Load(ctx, path)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":2}`, string(data))
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore()
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	_, err := store.Load(context.Background(), path)
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}
