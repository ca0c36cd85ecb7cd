package normalizer

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const previewScheme = "blob:tryon/"

type preview struct {
	data      []byte
	mediaType string
}

// PreviewRegistry hands out display URLs for local previews. Every URL must be
// revoked once its preview is replaced or cleared.
type PreviewRegistry struct {
	mu      sync.Mutex
	entries map[string]preview
}

// NewPreviewRegistry creates an empty registry.
func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{entries: make(map[string]preview)}
}

// Create registers data and returns its display URL.
func (r *PreviewRegistry) Create(data []byte, mediaType string) string {
	url := previewScheme + uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[url] = preview{data: data, mediaType: mediaType}
	return url
}

// Open returns the bytes behind a live URL.
func (r *PreviewRegistry) Open(url string) ([]byte, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.entries[url]
	return p.data, p.mediaType, ok
}

// Revoke releases a URL. It reports whether the URL was live.
func (r *PreviewRegistry) Revoke(url string) bool {
	if !strings.HasPrefix(url, previewScheme) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[url]; !ok {
		return false
	}
	delete(r.entries, url)
	return true
}

// Len returns the number of live URLs.
func (r *PreviewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
