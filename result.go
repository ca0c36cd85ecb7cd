package tryon

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// PreparedImage is a raster payload plus its media type, ready to be embedded
// in a multimodal request.
type PreparedImage struct {
	// Base64 is the standard-encoded payload only, never a data URL.
	Base64 string

	// MIMEType of the encoded payload (e.g. "image/jpeg")
	MIMEType string
}

// Bytes decodes the payload.
func (p PreparedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Base64)
}

// NewPreparedImage encodes raw bytes into a PreparedImage.
func NewPreparedImage(data []byte, mimeType string) PreparedImage {
	return PreparedImage{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
	}
}

// Result is the outcome of one successful generation.
type Result struct {
	// Image is a self-contained data URL (data:<mime>;base64,<payload>).
	Image string

	// Text is the model's commentary; empty when none was returned.
	Text string
}

// HasText reports whether the model returned commentary.
func (r *Result) HasText() bool {
	return r != nil && r.Text != ""
}

// ImageBytes decodes the result image and returns it with its MIME type.
func (r *Result) ImageBytes() ([]byte, string, error) {
	if r == nil || r.Image == "" {
		return nil, "", errors.New("result has no image")
	}
	mimeType, payload, err := ParseDataURL(r.Image)
	if err != nil {
		return nil, "", err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image payload: %w", err)
	}
	return data, mimeType, nil
}

// ErrInvalidDataURL is returned by ParseDataURL for malformed input.
var ErrInvalidDataURL = errors.New("invalid data URL")

// DataURL builds data:<mime>;base64,<payload>.
func DataURL(mimeType, payload string) string {
	return "data:" + mimeType + ";base64," + payload
}

// ParseDataURL splits a base64 data URL into its MIME type and payload.
// The payload is everything after the first comma.
func ParseDataURL(url string) (mimeType, payload string, err error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("%w: not base64 encoded", ErrInvalidDataURL)
	}
	return mimeType, payload, nil
}
