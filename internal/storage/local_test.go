package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	backend, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, backend.Ensure(context.Background()))
	return backend
}

func TestLocalStoragePutGetDelete(t *testing.T) {
	backend := newLocal(t)
	ctx := context.Background()

	err := backend.Put(ctx, "contact-1.png", strings.NewReader("bytes"), 5, "image/png")
	require.NoError(t, err)

	object, err := backend.Get(ctx, "contact-1.png")
	require.NoError(t, err)
	data, err := io.ReadAll(object)
	require.NoError(t, err)
	require.NoError(t, object.Close())
	require.Equal(t, "bytes", string(data))

	require.NoError(t, backend.Delete(ctx, "contact-1.png"))
	_, err = backend.Get(ctx, "contact-1.png")
	require.ErrorIs(t, err, ErrNotExist)
	require.ErrorIs(t, backend.Delete(ctx, "contact-1.png"), ErrNotExist)
}

func TestLocalStoragePutRefusesOverwrite(t *testing.T) {
	backend := newLocal(t)
	ctx := context.Background()

	require.NoError(t, backend.Put(ctx, "contact-1.png", strings.NewReader("first"), 5, "image/png"))
	err := backend.Put(ctx, "contact-1.png", strings.NewReader("second"), 6, "image/png")
	require.Error(t, err)

	object, err := backend.Get(ctx, "contact-1.png")
	require.NoError(t, err)
	data, err := io.ReadAll(object)
	require.NoError(t, err)
	require.NoError(t, object.Close())
	require.Equal(t, "first", string(data))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	backend := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape.png", "nested/escape.png"} {
		require.Error(t, backend.Put(ctx, key, strings.NewReader("x"), 1, ""), "key %q", key)
		_, err := backend.Get(ctx, key)
		require.Error(t, err, "key %q", key)
	}
}

func TestLocalStorageEnsureIdempotent(t *testing.T) {
	backend := newLocal(t)
	require.NoError(t, backend.Ensure(context.Background()))
	require.NoError(t, backend.Ensure(context.Background()))
}
