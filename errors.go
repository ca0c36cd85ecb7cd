package tryon

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies a user-visible failure class.
type ErrorKind string

const (
	KindUnsupportedMediaType ErrorKind = "UNSUPPORTED_MEDIA_TYPE"
	KindDecodeFailed         ErrorKind = "DECODE_FAILED"
	KindRasterUnavailable    ErrorKind = "RASTER_UNAVAILABLE"
	KindMissingCredential    ErrorKind = "MISSING_CREDENTIAL"
	KindNoCandidates         ErrorKind = "NO_CANDIDATES"
	KindNoImageReturned      ErrorKind = "NO_IMAGE_RETURNED"
	KindGenerationFailed     ErrorKind = "GENERATION_FAILED"
)

// Error is a structured error carrying a Kind and an optional cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var tErr *Error
		if !errors.As(err, &tErr) {
			return false
		}
		if tErr.Kind == kind {
			return true
		}
		err = tErr.Err
	}
	return false
}

// NewUnsupportedMediaType reports a file whose media type is not image/*.
func NewUnsupportedMediaType(mediaType string) *Error {
	return &Error{
		Kind:    KindUnsupportedMediaType,
		Message: fmt.Sprintf("please select an image file (got %q)", mediaType),
	}
}

// NewDecodeFailed reports a source file that could not be decoded.
func NewDecodeFailed(err error) *Error {
	return &Error{
		Kind:    KindDecodeFailed,
		Message: fmt.Sprintf("could not decode image: %v", err),
		Err:     err,
	}
}

// NewRasterUnavailable reports that no output raster could be produced.
func NewRasterUnavailable(reason string, err error) *Error {
	msg := "raster unavailable: " + reason
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{
		Kind:    KindRasterUnavailable,
		Message: msg,
		Err:     err,
	}
}

// NewMissingCredential reports an absent API key at startup.
func NewMissingCredential(name string) *Error {
	return &Error{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("%s environment variable not set", name),
	}
}

// NewNoCandidates reports a response without any candidates.
func NewNoCandidates() *Error {
	return &Error{
		Kind:    KindNoCandidates,
		Message: "the API did not return any candidates; the request may have been blocked",
	}
}

// NewNoImageReturned reports a response that carried no image part.
func NewNoImageReturned() *Error {
	return &Error{
		Kind:    KindNoImageReturned,
		Message: "the model did not return an image; it might have refused the request",
	}
}

// NewGenerationFailed wraps any transport, decoding or model-side error.
func NewGenerationFailed(err error) *Error {
	details := "unknown error"
	if err != nil {
		details = err.Error()
	}
	return &Error{
		Kind:    KindGenerationFailed,
		Message: "failed to generate image, please try again. Details: " + details,
		Err:     err,
	}
}

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// ErrStorageNotConfigured is returned when storage operations are attempted
// without a configured storage backend.
var ErrStorageNotConfigured = errors.New("storage not configured")
