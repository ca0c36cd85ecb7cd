// Package gemini provides a tryon.Generator backed by Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/mhpenta/tryon"
)

// contentGenerator is the slice of *genai.Models the client needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements tryon.Generator with one generateContent call per request.
type Client struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

// Ensure Client implements the interface.
var _ tryon.Generator = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewWithAPIKey creates a client for the Gemini API. An empty key is a
// MissingCredential error.
func NewWithAPIKey(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, tryon.NewMissingCredential("API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newClient(client.Models, opts...), nil
}

func newClient(models contentGenerator, opts ...Option) *Client {
	c := &Client{
		models: models,
		model:  APIModel,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the person image, the outfit image and the directive, and
// returns the last image and last text of the first candidate. Every failure
// is a KindGenerationFailed *tryon.Error. Nothing is retried.
func (c *Client) Generate(ctx context.Context, person, outfit tryon.PreparedImage) (*tryon.Result, error) {
	contents, err := buildContents(person, outfit)
	if err != nil {
		return nil, tryon.NewGenerationFailed(err)
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, buildConfig())
	if err != nil {
		c.logger.Error("gemini request failed",
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, tryon.NewGenerationFailed(checkRateLimitError(err, c.model))
	}

	result, err := parseResponse(resp)
	if err != nil {
		c.logger.Warn("gemini response rejected",
			"model", c.model,
			"finish_reason", finishReason(resp),
			"error", err.Error(),
		)
		return nil, tryon.NewGenerationFailed(err)
	}

	c.logger.Debug("gemini request completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"has_text", result.HasText(),
	)
	return result, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// buildContents orders the parts as person image, outfit image, directive.
func buildContents(person, outfit tryon.PreparedImage) ([]*genai.Content, error) {
	if err := tryon.ValidatePair(person, outfit); err != nil {
		return nil, err
	}

	personData, err := person.Bytes()
	if err != nil {
		return nil, fmt.Errorf("person image: %w: %v", tryon.ErrInvalidBase64, err)
	}
	outfitData, err := outfit.Bytes()
	if err != nil {
		return nil, fmt.Errorf("outfit image: %w: %v", tryon.ErrInvalidBase64, err)
	}

	parts := []*genai.Part{
		{
			InlineData: &genai.Blob{
				Data:     personData,
				MIMEType: person.MIMEType,
			},
		},
		{
			InlineData: &genai.Blob{
				Data:     outfitData,
				MIMEType: outfit.MIMEType,
			},
		},
		{Text: Directive},
	}

	return []*genai.Content{
		{Role: "user", Parts: parts},
	}, nil
}

func buildConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: append([]string(nil), responseModalities...),
	}
}

// parseResponse scans the first candidate. Later parts overwrite earlier ones
// for both the image and the text; thought parts are skipped.
func parseResponse(resp *genai.GenerateContentResponse) (*tryon.Result, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, tryon.NewNoCandidates()
	}

	result := &tryon.Result{}

	candidate := resp.Candidates[0]
	if candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				result.Image = tryon.DataURL(
					part.InlineData.MIMEType,
					base64.StdEncoding.EncodeToString(part.InlineData.Data),
				)
			}
			if part.Text != "" {
				result.Text = part.Text
			}
		}
	}

	if result.Image == "" {
		return nil, tryon.NewNoImageReturned()
	}
	return result, nil
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}

// checkRateLimitError wraps Gemini 429 errors in a RateLimitError; other
// errors are returned unchanged.
func checkRateLimitError(err error, model string) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	if apiErr.Code != 429 && apiErr.Status != "RESOURCE_EXHAUSTED" {
		return err
	}

	return &tryon.RateLimitError{
		RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
		LimitType:  "requests",
		Model:      model,
		Err:        err,
	}
}
