package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxFileSize    = 10 * 1024 * 1024 // 10 MB
	DefaultBaseDir = "./uploads"
	DefaultURLBase = "/static"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
)

// AllowedMimeTypes limits uploads to image content, which is all the
// account service stores (avatars and cover images).
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Uploader moves a locally staged file into media storage and returns a
// publicly servable URL for it.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// LocalUploader stores media on local disk under baseDir, served from urlBase.
type LocalUploader struct {
	baseDir string
	urlBase string
}

func NewLocalUploader(baseDir, urlBase string) *LocalUploader {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if urlBase == "" {
		urlBase = DefaultURLBase
	}
	return &LocalUploader{baseDir: baseDir, urlBase: urlBase}
}

func (u *LocalUploader) Upload(ctx context.Context, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat staged file: %w", err)
	}
	if info.Size() == 0 {
		return "", ErrEmptyFile
	}
	if info.Size() > MaxFileSize {
		return "", ErrFileTooLarge
	}

	// Detect MIME type from the first 512 bytes
	buf := make([]byte, 512)
	n, _ := src.Read(buf)
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !AllowedMimeTypes[mimeType] {
		return "", ErrInvalidMimeType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind staged file: %w", err)
	}

	// Destination: uploads/YYYY/MM/DD/<uuid>_<original>
	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(u.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeName(filepath.Base(localPath)))
	absPath := filepath.Join(absDir, filename)

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	return u.urlBase + "/" + strings.ReplaceAll(relPath, "\\", "/"), nil
}

func sanitizeName(name string) string {
	name = strings.ToLower(name)
	replacer := strings.NewReplacer(" ", "-", "/", "", "\\", "", "..", "")
	name = replacer.Replace(name)
	if len(name) > 64 {
		name = name[len(name)-64:]
	}
	return name
}
