package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage stores assets as plain files under a managed directory.
// It is the default backend; the directory doubles as the source for
// the public /uploads routes.
type LocalStorage struct {
	dir string
}

// NewLocalStorage constructs a local-disk backend rooted at dir.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("uploads directory is required")
	}
	return &LocalStorage{dir: dir}, nil
}

// Ensure creates the managed directory if absent.
func (l *LocalStorage) Ensure(_ context.Context) error {
	return os.MkdirAll(l.dir, 0o755)
}

// Put writes an object to a new file. An existing file under the same
// key fails the write rather than being overwritten.
func (l *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return f.Close()
}

// Get opens a reader for the file stored under the given key.
func (l *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

// Delete removes the file stored under the given key.
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	target, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotExist
		}
		return err
	}
	return nil
}

// Dir returns the managed directory.
func (l *LocalStorage) Dir() string {
	return l.dir
}

// resolve maps a key to a path inside the managed directory. Keys are
// flat filenames; anything with a path separator is rejected.
func (l *LocalStorage) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key != path.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}
