package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/staffdir/apiserver/internal/storage"
)

// PublicPathPrefix is the URL prefix under which stored assets are
// served.
const PublicPathPrefix = "/uploads/"

const assetNamePrefix = "contact"

// AssetStore maps validated uploads to durable objects with
// collision-resistant names and best-effort cleanup.
type AssetStore struct {
	storage *storage.Storage
	logger  *slog.Logger
}

// NewAssetStore constructs an AssetStore over the given backend.
func NewAssetStore(st *storage.Storage, logger *slog.Logger) *AssetStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetStore{storage: st, logger: logger}
}

// Store writes the bytes to a new object named with a timestamp and
// the original extension, and returns its public path.
func (s *AssetStore) Store(ctx context.Context, data []byte, ext, contentType string) (string, error) {
	key := fmt.Sprintf("%s-%d%s", assetNamePrefix, time.Now().UnixNano(), ext)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("store asset %s: %w", key, err)
	}
	return PublicPathPrefix + key, nil
}

// Delete removes the asset behind a public path. Cleanup is
// best-effort: a missing object is fine, and any other failure is
// logged and swallowed so it never aborts the surrounding contact
// mutation.
func (s *AssetStore) Delete(ctx context.Context, publicPath string) {
	key, ok := keyFromPublicPath(publicPath)
	if !ok {
		s.logger.Warn("skipping cleanup of unrecognized asset path", "path", publicPath)
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.logger.Warn("asset cleanup failed", "path", publicPath, "error", err)
	}
}

// Open returns a reader for the asset stored under the given filename.
func (s *AssetStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, filename)
}

func keyFromPublicPath(publicPath string) (string, bool) {
	key := strings.TrimPrefix(publicPath, PublicPathPrefix)
	if key == "" || key == publicPath || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}
