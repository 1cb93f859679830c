package httpapi

import (
	"context"

	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockSyncer is a mock implementation of Syncer for testing.
type MockSyncer struct {
	mock.Mock
}

var _ Syncer = &MockSyncer{} // Compile-time check

// Run implements the Syncer interface.
func (m *MockSyncer) Run(ctx context.Context) (schema.RunSummary, error) {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(schema.RunSummary)
	return summary, args.Error(1)
}
