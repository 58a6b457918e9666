package testutil

import (
	"context"
	"sync"

	"maple/model"
)

// MockProvider implements model.Provider for testing.
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, req model.Request, callback model.StreamCallback) error
	ListModelsFunc func(ctx context.Context) ([]model.ModelInfo, error)
	PingFunc       func(ctx context.Context) error

	mu           sync.Mutex
	requests     []model.Request
	currentModel string
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ListModelsFunc = mock.defaultListModels
	mock.PingFunc = mock.defaultPing
	return mock
}

// NewScriptedProvider returns a mock that answers the n-th Chat call by
// streaming the n-th entry of responses, one fragment per element. Calls past
// the script stream nothing.
func NewScriptedProvider(responses ...[]string) *MockProvider {
	mock := NewMockProvider("scripted-model")
	mock.ChatFunc = func(ctx context.Context, req model.Request, callback model.StreamCallback) error {
		n := len(mock.Requests()) - 1
		if n >= len(responses) {
			return nil
		}
		return StreamFragments(responses[n], callback)
	}
	return mock
}

// StreamFragments feeds fragments to callback, stopping at the first error.
func StreamFragments(fragments []string, callback model.StreamCallback) error {
	for _, f := range fragments {
		if err := callback(f); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockProvider) defaultChat(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	// Default: echo back a mock response
	if len(req.History) > 0 {
		return callback("Mock response")
	}
	return nil
}

func (m *MockProvider) defaultListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return []model.ModelInfo{
		{Name: "mock-model-1", InternalName: "mock-model-1", Provider: "mock"},
		{Name: "mock-model-2", InternalName: "mock-model-2", Provider: "mock"},
	}, nil
}

func (m *MockProvider) defaultPing(ctx context.Context) error {
	return nil
}

func (m *MockProvider) Chat(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.ChatFunc(ctx, req, callback)
}

// Requests returns every request Chat received, oldest first.
func (m *MockProvider) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *MockProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return m.ListModelsFunc(ctx)
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) GetDisplayName() string {
	// Mock provider returns same value as GetModel (no prefix stripping)
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
