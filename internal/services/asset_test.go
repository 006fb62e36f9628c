package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/staffdir/apiserver/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestAssetStore(t *testing.T) (*AssetStore, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	st := storage.NewStorage(backend)
	require.NoError(t, st.Ensure(context.Background()))
	return NewAssetStore(st, nil), dir
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestAssetStoreStore(t *testing.T) {
	assets, dir := newTestAssetStore(t)
	ctx := context.Background()

	path, err := assets.Store(ctx, []byte("fake png bytes"), ".png", "image/png")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, PublicPathPrefix))
	require.True(t, strings.HasSuffix(path, ".png"))
	require.Contains(t, path, "contact-")

	names := dirEntries(t, dir)
	require.Len(t, names, 1)
	require.Equal(t, PublicPathPrefix+names[0], path)

	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	require.NoError(t, err)
	require.Equal(t, []byte("fake png bytes"), data)
}

func TestAssetStoreStoreUniqueNames(t *testing.T) {
	assets, dir := newTestAssetStore(t)
	ctx := context.Background()

	first, err := assets.Store(ctx, []byte("a"), ".jpg", "image/jpeg")
	require.NoError(t, err)
	second, err := assets.Store(ctx, []byte("b"), ".jpg", "image/jpeg")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Len(t, dirEntries(t, dir), 2)
}

func TestAssetStoreDelete(t *testing.T) {
	assets, dir := newTestAssetStore(t)
	ctx := context.Background()

	path, err := assets.Store(ctx, []byte("bytes"), ".gif", "image/gif")
	require.NoError(t, err)

	assets.Delete(ctx, path)
	require.Empty(t, dirEntries(t, dir))

	// Deleting again must be a no-op, not a failure.
	assets.Delete(ctx, path)
	require.Empty(t, dirEntries(t, dir))
}

func TestAssetStoreDeleteUnrecognizedPath(t *testing.T) {
	assets, dir := newTestAssetStore(t)
	ctx := context.Background()

	_, err := assets.Store(ctx, []byte("bytes"), ".png", "image/png")
	require.NoError(t, err)

	// Paths outside the managed prefix are ignored.
	assets.Delete(ctx, "/etc/passwd")
	assets.Delete(ctx, "")
	require.Len(t, dirEntries(t, dir), 1)
}

func TestAssetStoreOpen(t *testing.T) {
	assets, _ := newTestAssetStore(t)
	ctx := context.Background()

	path, err := assets.Store(ctx, []byte("contents"), ".png", "image/png")
	require.NoError(t, err)

	object, err := assets.Open(ctx, strings.TrimPrefix(path, PublicPathPrefix))
	require.NoError(t, err)
	defer object.Close()

	data, err := io.ReadAll(object)
	require.NoError(t, err)
	require.Equal(t, []byte("contents"), data)

	_, err = assets.Open(ctx, "contact-0.png")
	require.ErrorIs(t, err, storage.ErrNotExist)
}
