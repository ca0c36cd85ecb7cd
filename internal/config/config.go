package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mhpenta/tryon"
)

// Environment variable names.
const (
	EnvAPIKey            = "API_KEY"
	EnvLogLevel          = "LOG_LEVEL"
	EnvRequestsPerMinute = "TRYON_REQUESTS_PER_MINUTE"
)

// DefaultRequestsPerMinute caps outbound generations when nothing is configured.
const DefaultRequestsPerMinute = 10

// Config holds application configuration.
type Config struct {
	// APIKey authenticates against the generative endpoint
	APIKey string

	// LogLevel for the process-wide slog handler
	LogLevel slog.Level

	// RequestsPerMinute limits outbound generations; 0 disables limiting.
	RequestsPerMinute int
}

// Load reads optional dotenv files, then the environment. Variables already
// set in the environment win over file values. A missing API_KEY is a
// MissingCredential error.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		APIKey:            strings.TrimSpace(os.Getenv(EnvAPIKey)),
		LogLevel:          slog.LevelInfo,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}

	if cfg.APIKey == "" {
		return nil, tryon.NewMissingCredential(EnvAPIKey)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvLogLevel, v, err)
		}
	}

	if v := os.Getenv(EnvRequestsPerMinute); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s %q: must be a non-negative integer", EnvRequestsPerMinute, v)
		}
		cfg.RequestsPerMinute = n
	}

	return cfg, nil
}
