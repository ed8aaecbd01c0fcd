package backend

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/papercomputeco/chatsphere/pkg/llm"
)

// MockBackend is a mock implementation of Backend using testify/mock.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Name() string {
	return "mock"
}
