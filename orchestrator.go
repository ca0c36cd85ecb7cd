package tryon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhpenta/tryon/ratelimiter"
)

// Phase is the Orchestrator's position in its state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReady
	PhaseGenerating
	PhaseHasResult
	PhaseHasError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseReady:
		return "ready"
	case PhaseGenerating:
		return "generating"
	case PhaseHasResult:
		return "has_result"
	case PhaseHasError:
		return "has_error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a consistent snapshot of the Orchestrator.
type State struct {
	Phase     Phase
	Busy      bool
	Err       error
	Result    *Result
	HasPerson bool
	HasOutfit bool

	// Version increases with every transition.
	Version uint64
}

// ErrorMessage returns the user-facing error text, or "" when there is none.
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Orchestrator holds the person and outfit slots and the current result, and
// allows at most one Generator call in flight.
type Orchestrator struct {
	generator Generator

	// Optional outbound request limiter
	limiter ratelimiter.Limiter

	logger    *slog.Logger
	listeners []func(State)

	mu      sync.Mutex
	person  *PreparedImage
	outfit  *PreparedImage
	result  *Result
	err     error
	busy    bool
	phase   Phase
	version uint64
}

// SetPerson fills or clears (nil) the person slot.
func (o *Orchestrator) SetPerson(img *PreparedImage) {
	o.setSlot(&o.person, img, "person")
}

// SetOutfit fills or clears (nil) the outfit slot.
func (o *Orchestrator) SetOutfit(img *PreparedImage) {
	o.setSlot(&o.outfit, img, "outfit")
}

func (o *Orchestrator) setSlot(slot **PreparedImage, img *PreparedImage, name string) {
	o.mu.Lock()
	if img == nil {
		*slot = nil
	} else {
		cp := *img
		*slot = &cp
	}

	// A running generation already captured its inputs.
	if !o.busy {
		if o.person != nil && o.outfit != nil {
			o.phase = PhaseReady
		} else {
			o.phase = PhaseIdle
		}
	}
	state := o.transitionLocked()
	o.mu.Unlock()

	o.logger.Debug("slot updated",
		"slot", name,
		"filled", img != nil,
		"phase", state.Phase.String(),
	)
	o.notify(state)
}

// Generate runs one generation when both slots are filled and none is in
// flight; otherwise it does nothing. It blocks until the Generator returns and
// reports whether a generation ran. The outcome is observed through State.
func (o *Orchestrator) Generate(ctx context.Context) bool {
	o.mu.Lock()
	if o.busy || o.person == nil || o.outfit == nil {
		busy := o.busy
		o.mu.Unlock()
		o.logger.Debug("generate ignored",
			"busy", busy,
		)
		return false
	}
	person, outfit := *o.person, *o.outfit
	o.busy = true
	o.err = nil
	o.phase = PhaseGenerating
	state := o.transitionLocked()
	o.mu.Unlock()
	o.notify(state)

	requestID := uuid.NewString()
	start := time.Now()

	var (
		result *Result
		err    error
	)
	defer func() {
		o.mu.Lock()
		o.busy = false
		switch {
		case err != nil:
			o.err = err
			o.phase = PhaseHasError
		case result != nil:
			o.result = result
			o.phase = PhaseHasResult
		default:
			// Generator panicked.
			o.err = NewGenerationFailed(fmt.Errorf("generation aborted"))
			o.phase = PhaseHasError
		}
		state := o.transitionLocked()
		o.mu.Unlock()
		o.notify(state)
	}()

	o.logger.Debug("starting try-on generation",
		"request_id", requestID,
		"person_mime", person.MIMEType,
		"outfit_mime", outfit.MIMEType,
	)

	if err = o.checkRateLimit(); err != nil {
		o.logger.Warn("rate limit hit",
			"request_id", requestID,
			"error", err.Error(),
		)
		return true
	}

	result, err = o.generator.Generate(ctx, person, outfit)
	duration := time.Since(start)
	if err != nil {
		if !IsKind(err, KindGenerationFailed) {
			err = NewGenerationFailed(err)
		}
		o.logger.Error("generation failed",
			"request_id", requestID,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		return true
	}
	if result == nil {
		err = NewGenerationFailed(NewNoImageReturned())
		return true
	}

	o.logger.Info("generation completed",
		"request_id", requestID,
		"duration_ms", duration.Milliseconds(),
		"has_text", result.HasText(),
	)
	return true
}

// checkRateLimit consumes one request from the limiter, if any.
func (o *Orchestrator) checkRateLimit() error {
	if o.limiter == nil {
		return nil
	}
	if !o.limiter.TryConsume(1) {
		return &RateLimitError{
			RetryAfter: o.limiter.TimeUntilAvailable(1),
			LimitType:  "requests",
			Model:      "try-on",
		}
	}
	return nil
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Busy reports whether a generation is in flight.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

// Err returns the error recorded by the last generation, if any.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Result returns the latest successful result, or nil.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Close releases the generator.
func (o *Orchestrator) Close() error {
	return o.generator.Close()
}

func (o *Orchestrator) transitionLocked() State {
	o.version++
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() State {
	return State{
		Phase:     o.phase,
		Busy:      o.busy,
		Err:       o.err,
		Result:    o.result,
		HasPerson: o.person != nil,
		HasOutfit: o.outfit != nil,
		Version:   o.version,
	}
}

func (o *Orchestrator) notify(state State) {
	for _, fn := range o.listeners {
		fn(state)
	}
}
