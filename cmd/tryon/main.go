package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mhpenta/tryon"
	"github.com/mhpenta/tryon/internal/config"
	"github.com/mhpenta/tryon/provider/gemini"
	"github.com/mhpenta/tryon/ratelimiter"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// offlineArgs never reach the generative endpoint and run without API_KEY.
var offlineArgs = map[string]bool{
	"prepare": true,
	"help":    true, "h": true,
	"--help": true, "-h": true,
	"--version": true, "-v": true,
}

// needsCredential reports whether the invoked command talks to the endpoint.
func needsCredential() bool {
	if len(os.Args) < 2 {
		return false
	}
	return !offlineArgs[os.Args[1]]
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		if needsCredential() || !tryon.IsKind(err, tryon.KindMissingCredential) {
			fmt.Fprintf(os.Stderr, "tryon: %v\n", err)
			os.Exit(1)
		}
		cfg = &config.Config{LogLevel: slog.LevelInfo}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	app := newCLIApp(deps{
		newGenerator: func(ctx context.Context) (tryon.Generator, error) {
			return gemini.NewWithAPIKey(ctx, cfg.APIKey, gemini.WithLogger(logger))
		},
		limiter: ratelimiter.New(cfg.RequestsPerMinute),
		logger:  logger,
		stdout:  os.Stdout,
	})

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tryon: %v\n", err)
		os.Exit(1)
	}
}
