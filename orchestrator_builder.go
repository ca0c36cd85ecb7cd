package tryon

import (
	"log/slog"

	"github.com/mhpenta/tryon/ratelimiter"
)

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a structured logger for the orchestrator.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRateLimiter consults limiter before every outbound generation.
// A nil limiter disables limiting.
func WithRateLimiter(limiter ratelimiter.Limiter) Option {
	return func(o *Orchestrator) {
		o.limiter = limiter
	}
}

// WithStateListener registers fn to receive a snapshot after every transition.
// Listeners run on the goroutine that caused the transition, outside the
// orchestrator's lock; they must not block.
func WithStateListener(fn func(State)) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}

// NewOrchestrator creates an Orchestrator over the given generator.
//
// Example:
//
//	gen, err := gemini.NewWithAPIKey(ctx, cfg.APIKey)
//	if err != nil {
//	    return err
//	}
//	orch := tryon.NewOrchestrator(gen,
//	    tryon.WithLogger(slog.Default()),
//	    tryon.WithRateLimiter(ratelimiter.New(10)),
//	)
func NewOrchestrator(generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator: generator,
		logger:    slog.Default(),
		phase:     PhaseIdle,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
