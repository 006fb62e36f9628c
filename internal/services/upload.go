package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MaxImageBytes caps uploaded image size at 20 MiB.
const MaxImageBytes = 20 << 20

// ImageUpload is a validated-candidate file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// ValidateImage checks an upload's filename extension and declared
// content type against the image allow-list. It returns the normalized
// extension, or ErrInvalidImage when either check fails.
func ValidateImage(filename, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageTypes[ext]; !ok {
		return "", fmt.Errorf("%w: extension %q is not allowed", ErrInvalidImage, ext)
	}

	// Declared type may carry parameters ("image/png; charset=binary").
	declared := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !isAllowedImageType(declared) {
		return "", fmt.Errorf("%w: content type %q is not an image", ErrInvalidImage, contentType)
	}

	return ext, nil
}

func isAllowedImageType(contentType string) bool {
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
