package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned when a requested object is not present in
// the backend.
var ErrNotExist = errors.New("object does not exist")

// ObjectStorage defines common asset operations across backends.
type ObjectStorage interface {
	// Ensure creates the backing directory or bucket if absent.
	Ensure(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Ensure makes sure the backing directory or bucket exists.
func (s *Storage) Ensure(ctx context.Context) error {
	return s.backend.Ensure(ctx)
}

// Put writes an object under the given key.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for the object stored under the given key.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes the object stored under the given key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}
