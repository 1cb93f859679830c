package events

import (
	"context"

	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of contract.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

// PublishRun mocks the PublishRun method.
func (m *MockPublisher) PublishRun(ctx context.Context, summary schema.RunSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

// Close mocks the Close method.
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
