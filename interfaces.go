package tryon

import "context"

// Generator produces a try-on image from a person photo and a garment photo.
// Implementations wrap every failure in a KindGenerationFailed *Error and
// never retry.
type Generator interface {
	// Generate dresses the person from the first image in the outfit from the second.
	Generate(ctx context.Context, person, outfit PreparedImage) (*Result, error)

	// Close releases any resources held by the generator.
	Close() error
}
