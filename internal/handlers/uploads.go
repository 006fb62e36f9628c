package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/staffdir/apiserver/internal/services"
	"github.com/staffdir/apiserver/internal/storage"
)

// UploadsHandler serves stored contact images by filename.
type UploadsHandler struct {
	assets *services.AssetStore
}

// NewUploadsHandler constructs an UploadsHandler over the asset store.
func NewUploadsHandler(assets *services.AssetStore) *UploadsHandler {
	return &UploadsHandler{assets: assets}
}

// UploadsRouter registers the public asset route on the given router.
func UploadsRouter(r chi.Router, assets *services.AssetStore) {
	handler := NewUploadsHandler(assets)

	r.Get("/{assetName}", handler.ServeAsset)
}

// ServeAsset streams the named asset from whichever backend is
// configured.
func (h *UploadsHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "assetName")

	object, err := h.assets.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to open asset")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	_, _ = io.Copy(w, object)
}
