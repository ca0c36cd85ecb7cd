package tryon

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrEmptyImageData  = errors.New("image data cannot be empty")
	ErrInvalidMIMEType = errors.New("invalid or unsupported MIME type")
	ErrImageTooLarge   = errors.New("image data exceeds maximum size")
	ErrFramedPayload   = errors.New("payload must not carry data URL framing")
	ErrInvalidBase64   = errors.New("payload is not valid base64")
)

// MaxImageSize is the maximum allowed decoded image size in bytes (20MB)
const MaxImageSize = 20 * 1024 * 1024

// IsImageMediaType reports whether a media type names an image (image/*).
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// ValidatePreparedImage validates a prepared image before it is sent.
func ValidatePreparedImage(img PreparedImage) error {
	if img.Base64 == "" {
		return ErrEmptyImageData
	}

	if strings.HasPrefix(img.Base64, "data:") || strings.Contains(img.Base64, ";base64,") {
		return ErrFramedPayload
	}

	if img.MIMEType == "" {
		return fmt.Errorf("%w: MIME type is required", ErrInvalidMIMEType)
	}
	if !IsImageMediaType(img.MIMEType) {
		return fmt.Errorf("%w: %s", ErrInvalidMIMEType, img.MIMEType)
	}

	if size := base64.StdEncoding.DecodedLen(len(img.Base64)); size > MaxImageSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, size, MaxImageSize)
	}

	return nil
}

// ValidatePair validates the person and outfit images of one request.
func ValidatePair(person, outfit PreparedImage) error {
	if err := ValidatePreparedImage(person); err != nil {
		return fmt.Errorf("person image: %w", err)
	}
	if err := ValidatePreparedImage(outfit); err != nil {
		return fmt.Errorf("outfit image: %w", err)
	}
	return nil
}
