package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{name: "png", filename: "photo.png", contentType: "image/png", wantExt: ".png"},
		{name: "jpg", filename: "photo.jpg", contentType: "image/jpeg", wantExt: ".jpg"},
		{name: "jpeg", filename: "photo.jpeg", contentType: "image/jpeg", wantExt: ".jpeg"},
		{name: "gif", filename: "anim.gif", contentType: "image/gif", wantExt: ".gif"},
		{name: "uppercase extension", filename: "PHOTO.PNG", contentType: "image/png", wantExt: ".png"},
		{name: "content type with params", filename: "photo.png", contentType: "image/png; charset=binary", wantExt: ".png"},
		{name: "mismatched allowed type", filename: "photo.png", contentType: "image/jpeg", wantExt: ".png"},
		{name: "executable", filename: "evil.exe", contentType: "image/png", wantErr: true},
		{name: "plain text type", filename: "photo.png", contentType: "text/plain", wantErr: true},
		{name: "no extension", filename: "photo", contentType: "image/png", wantErr: true},
		{name: "svg not allowed", filename: "logo.svg", contentType: "image/svg+xml", wantErr: true},
		{name: "empty content type", filename: "photo.png", contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := ValidateImage(tt.filename, tt.contentType)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantExt, ext)
		})
	}
}
