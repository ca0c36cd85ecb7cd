package tryon_test

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhpenta/tryon"
	"github.com/mhpenta/tryon/normalizer"
)

func imageFile(t *testing.T, w, h int, format imaging.Format, mediaType string) normalizer.File {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, format))
	return normalizer.File{Name: "photo", MediaType: mediaType, Data: buf.Bytes()}
}

// tryOnSession wires two slots into an orchestrator the way a front end does.
type tryOnSession struct {
	orch   *tryon.Orchestrator
	person *normalizer.Slot
	outfit *normalizer.Slot
	busy   []bool
}

func newSession(gen tryon.Generator) *tryOnSession {
	s := &tryOnSession{}
	s.orch = tryon.NewOrchestrator(gen, tryon.WithStateListener(func(st tryon.State) {
		s.busy = append(s.busy, st.Busy)
	}))
	s.person = normalizer.NewSlot("person", normalizer.WithSubscriber(s.orch.SetPerson))
	s.outfit = normalizer.NewSlot("outfit", normalizer.WithSubscriber(s.orch.SetOutfit))
	return s
}

func (s *tryOnSession) selectBoth(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.person.Select(ctx, imageFile(t, 200, 100, imaging.JPEG, "image/jpeg")))
	require.NoError(t, s.outfit.Select(ctx, imageFile(t, 50, 50, imaging.PNG, "image/png")))
}

func TestScenario_SuccessfulTryOn(t *testing.T) {
	gen := &tryon.MockGenerator{
		GenerateFunc: func(_ context.Context, person, outfit tryon.PreparedImage) (*tryon.Result, error) {
			assert.Equal(t, "image/jpeg", person.MIMEType)
			assert.Equal(t, "image/png", outfit.MIMEType)
			return &tryon.Result{Image: tryon.DataURL("image/png", "AAA"), Text: "ok"}, nil
		},
	}
	s := newSession(gen)
	s.selectBoth(t)

	require.True(t, s.orch.Generate(context.Background()))

	state := s.orch.State()
	require.NotNil(t, state.Result)
	assert.Equal(t, "data:image/png;base64,AAA", state.Result.Image)
	assert.Equal(t, "ok", state.Result.Text)
	assert.False(t, state.Busy)
	assert.NoError(t, state.Err)
	assert.Equal(t, tryon.PhaseHasResult, state.Phase)
}

func TestScenario_GenerationFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no candidates", tryon.NewGenerationFailed(tryon.NewNoCandidates()), "blocked"},
		{"text only", tryon.NewGenerationFailed(tryon.NewNoImageReturned()), "refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := &tryon.Result{Image: tryon.DataURL("image/png", "AAA")}
			fail := false
			gen := &tryon.MockGenerator{
				GenerateFunc: func(context.Context, tryon.PreparedImage, tryon.PreparedImage) (*tryon.Result, error) {
					if fail {
						return nil, tt.err
					}
					return first, nil
				},
			}
			s := newSession(gen)
			s.selectBoth(t)
			require.True(t, s.orch.Generate(context.Background()))

			fail = true
			require.True(t, s.orch.Generate(context.Background()))

			state := s.orch.State()
			assert.Contains(t, state.ErrorMessage(), tt.message)
			assert.Same(t, first, state.Result)
			assert.False(t, state.Busy)
		})
	}
}

func TestScenario_OutfitMissing(t *testing.T) {
	gen := &tryon.MockGenerator{}
	s := newSession(gen)
	require.NoError(t, s.person.Select(context.Background(), imageFile(t, 200, 100, imaging.JPEG, "image/jpeg")))

	assert.False(t, s.orch.Generate(context.Background()))
	assert.Equal(t, 0, gen.Calls())
	assert.NotContains(t, s.busy, true)
	assert.Equal(t, tryon.PhaseIdle, s.orch.State().Phase)
}

func TestScenario_TextFileRejected(t *testing.T) {
	published := 0
	slot := normalizer.NewSlot("person", normalizer.WithSubscriber(func(*tryon.PreparedImage) {
		published++
	}))

	err := slot.Select(context.Background(), normalizer.File{Name: "notes.txt", MediaType: "text/plain", Data: []byte("abcd")})
	require.Error(t, err)
	assert.True(t, tryon.IsKind(err, tryon.KindUnsupportedMediaType))
	assert.Equal(t, 0, published)
	assert.False(t, slot.HasFile())
	assert.Nil(t, slot.Current())
}
