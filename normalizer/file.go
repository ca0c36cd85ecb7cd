// Package normalizer turns user-selected image files into tryon.PreparedImage
// values whose pixels reflect a requested quarter-turn rotation.
package normalizer

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mhpenta/tryon"
)

// File is a user-selected binary blob and its advertised media type.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// OpenFile reads a file from disk. The media type comes from the extension,
// falling back to content sniffing.
func OpenFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}

	mediaType := tryon.GetMIMEType(path)
	if mediaType == "" {
		mediaType = sniffMediaType(data)
	}

	return File{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func sniffMediaType(data []byte) string {
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return mediaType
}
