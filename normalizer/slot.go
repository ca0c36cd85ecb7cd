package normalizer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mhpenta/tryon"
)

// ErrSuperseded is returned by a Select or Rotate whose result was discarded
// because a later action on the same slot took over.
var ErrSuperseded = errors.New("superseded by a later action")

// SlotOption configures a Slot.
type SlotOption func(*Slot)

// WithSubscriber receives the current image, or nil, after every successful
// recompute, every failed one and every Clear. It must not call back into the
// slot synchronously.
func WithSubscriber(fn func(*tryon.PreparedImage)) SlotOption {
	return func(s *Slot) {
		s.subscriber = fn
	}
}

// WithAlert receives user-facing failures (unsupported files, decode errors).
func WithAlert(fn func(error)) SlotOption {
	return func(s *Slot) {
		s.alert = fn
	}
}

// WithPreviewRegistry shares a preview registry between slots.
func WithPreviewRegistry(r *PreviewRegistry) SlotOption {
	return func(s *Slot) {
		if r != nil {
			s.previews = r
		}
	}
}

// WithSlotLogger sets a structured logger for the slot.
func WithSlotLogger(logger *slog.Logger) SlotOption {
	return func(s *Slot) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Slot holds one user-selected image and its rotation, and republishes the
// prepared image every time either changes.
type Slot struct {
	name       string
	logger     *slog.Logger
	previews   *PreviewRegistry
	subscriber func(*tryon.PreparedImage)
	alert      func(error)
	prepare    func(ctx context.Context, f File, quarters int) (tryon.PreparedImage, error)

	mu         sync.Mutex
	file       *File
	quarters   int
	busy       bool
	seq        uint64
	cancel     context.CancelFunc
	current    *tryon.PreparedImage
	previewURL string

	// pubMu keeps publications in transition order.
	pubMu sync.Mutex
}

// NewSlot creates an empty slot. The name only appears in logs.
func NewSlot(name string, opts ...SlotOption) *Slot {
	s := &Slot{
		name:     name,
		logger:   slog.Default(),
		previews: NewPreviewRegistry(),
		prepare:  Prepare,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alert == nil {
		s.alert = func(err error) {
			s.logger.Warn("slot alert", "slot", s.name, "error", err.Error())
		}
	}
	return s
}

// Select replaces the slot's file and resets its rotation. Files that are not
// image/* are rejected with an UnsupportedMediaType error and leave the slot
// unchanged. A recompute already in flight is cancelled.
func (s *Slot) Select(ctx context.Context, f File) error {
	if !tryon.IsImageMediaType(f.MediaType) {
		err := tryon.NewUnsupportedMediaType(f.MediaType)
		s.alert(err)
		return err
	}

	s.mu.Lock()
	s.file = &f
	s.quarters = 0
	s.replacePreviewLocked(s.previews.Create(f.Data, f.MediaType))
	runCtx, seq := s.startLocked(ctx)
	s.mu.Unlock()

	s.logger.Debug("file selected",
		"slot", s.name,
		"file", f.Name,
		"mime", f.MediaType,
		"bytes", len(f.Data),
	)
	return s.recompute(runCtx, seq, f, 0)
}

// Rotate turns the image a quarter in the given direction. It does nothing
// when no file is selected or a recompute is in flight.
func (s *Slot) Rotate(ctx context.Context, dir Direction) error {
	s.mu.Lock()
	if s.file == nil || s.busy {
		busy := s.busy
		s.mu.Unlock()
		s.logger.Debug("rotate ignored", "slot", s.name, "busy", busy)
		return nil
	}
	s.quarters = NormalizeQuarters(s.quarters + int(dir))
	f, q := *s.file, s.quarters
	runCtx, seq := s.startLocked(ctx)
	s.mu.Unlock()

	s.logger.Debug("rotating",
		"slot", s.name,
		"direction", dir.String(),
		"quarters", q,
	)
	return s.recompute(runCtx, seq, f, q)
}

// Clear drops the file and prepared image, releases the preview and
// publishes nil.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.publish(nil)
}

// Close releases the slot's resources without publishing.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Current returns a copy of the published image, or nil.
func (s *Slot) Current() *tryon.PreparedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Quarters returns the current clockwise quarter-turn count (0..3).
func (s *Slot) Quarters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quarters
}

// Busy reports whether a recompute is in flight.
func (s *Slot) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// HasFile reports whether a file is selected.
func (s *Slot) HasFile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file != nil
}

// PreviewURL returns the display URL of the selected file, or "".
func (s *Slot) PreviewURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewURL
}

// startLocked supersedes any in-flight recompute and marks the slot busy.
func (s *Slot) startLocked(ctx context.Context) (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	s.busy = true
	return runCtx, s.seq
}

func (s *Slot) resetLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	s.file = nil
	s.quarters = 0
	s.busy = false
	s.current = nil
	s.replacePreviewLocked("")
}

func (s *Slot) replacePreviewLocked(url string) {
	if s.previewURL != "" {
		s.previews.Revoke(s.previewURL)
	}
	s.previewURL = url
}

func (s *Slot) recompute(ctx context.Context, seq uint64, f File, quarters int) error {
	start := time.Now()
	img, err := s.prepare(ctx, f, quarters)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded recompute",
			"slot", s.name,
			"quarters", quarters,
		)
		return ErrSuperseded
	}
	s.cancel()
	s.cancel = nil
	s.busy = false
	if err != nil {
		s.current = nil
	} else {
		s.current = &img
	}
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	duration := time.Since(start)
	if err != nil {
		s.logger.Error("image preparation failed",
			"slot", s.name,
			"quarters", quarters,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error(),
		)
		s.alert(err)
		s.publish(nil)
		return err
	}

	s.logger.Info("image prepared",
		"slot", s.name,
		"quarters", quarters,
		"mime", img.MIMEType,
		"duration_ms", duration.Milliseconds(),
	)
	cp := img
	s.publish(&cp)
	return nil
}

func (s *Slot) publish(img *tryon.PreparedImage) {
	if s.subscriber != nil {
		s.subscriber(img)
	}
}
