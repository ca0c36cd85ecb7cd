package tryon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage persists a generated image.
// Implementations can wrap existing storage clients (GCS, S3, etc.).
type Storage interface {
	// SaveFile saves image data to storage and returns where it can be found.
	// The path is relative to the storage root (e.g., "results/look.png").
	SaveFile(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

// StorageResult contains information about a saved image.
type StorageResult struct {
	// Location is what the storage returned (URL or file path)
	Location string

	// Path is the storage path/key where the image was saved
	Path string

	// Size is the number of bytes saved
	Size int
}

// SaveToStorage writes the result image to storage as {basePath}.{extension}.
func SaveToStorage(
	ctx context.Context,
	storage Storage,
	result *Result,
	basePath string) (*StorageResult, error) {

	if storage == nil {
		return nil, ErrStorageNotConfigured
	}

	data, mimeType, err := result.ImageBytes()
	if err != nil {
		return nil, err
	}

	path := basePath + "." + extensionFromMIME(mimeType)
	location, err := storage.SaveFile(ctx, data, path, mimeType)
	if err != nil {
		return nil, err
	}

	return &StorageResult{
		Location: location,
		Path:     path,
		Size:     len(data),
	}, nil
}

// DirStorage stores files below a local directory.
type DirStorage struct {
	Root string
}

// SaveFile writes data to Root/path and returns the absolute file path.
func (d DirStorage) SaveFile(ctx context.Context, data []byte, path string, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", path)
	}

	full := filepath.Join(d.Root, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", full, err)
	}

	abs, err := filepath.Abs(full)
	if err != nil {
		return full, nil
	}
	return abs, nil
}

// GetMIMEType guesses an image MIME type from a file extension.
// It returns "" for unknown extensions.
func GetMIMEType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	default:
		return ""
	}
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case "image/tiff":
		return "tiff"
	default:
		return "png"
	}
}
