package tryon

import (
	"context"
	"sync/atomic"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, person, outfit PreparedImage) (*Result, error)
	CloseFunc    func() error

	calls atomic.Int32
}

func (m *MockGenerator) Generate(ctx context.Context, person, outfit PreparedImage) (*Result, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, person, outfit)
	}
	return &Result{Image: DataURL("image/png", "AAA")}, nil
}

func (m *MockGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	return int(m.calls.Load())
}
