package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header bytes so http.DetectContentType reports image/png.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func stageFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestLocalUploader_Upload(t *testing.T) {
	baseDir := t.TempDir()
	uploader := NewLocalUploader(baseDir, "/static")

	staged := stageFile(t, "avatar.png", pngHeader)

	url, err := uploader.Upload(context.Background(), staged)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/"))
	assert.True(t, strings.HasSuffix(url, "avatar.png"))

	// The stored file must exist and match the staged content.
	rel := strings.TrimPrefix(url, "/static/")
	stored, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestLocalUploader_RejectsEmptyFile(t *testing.T) {
	uploader := NewLocalUploader(t.TempDir(), "/static")
	staged := stageFile(t, "empty.png", nil)

	_, err := uploader.Upload(context.Background(), staged)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLocalUploader_RejectsNonImage(t *testing.T) {
	uploader := NewLocalUploader(t.TempDir(), "/static")
	staged := stageFile(t, "notes.txt", []byte("plain text, not an image"))

	_, err := uploader.Upload(context.Background(), staged)
	assert.ErrorIs(t, err, ErrInvalidMimeType)
}

func TestLocalUploader_MissingFile(t *testing.T) {
	uploader := NewLocalUploader(t.TempDir(), "/static")

	_, err := uploader.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
