package mocks

import (
	"context"

	"github.com/inboxpilot/inboxpilot-backend/internal/mailsync"
	"github.com/stretchr/testify/mock"
)

// MockSyncService implements handlers.SyncService
type MockSyncService struct {
	mock.Mock
}

// SyncAll runs batches until the mailbox is exhausted
func (m *MockSyncService) SyncAll(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// SyncBatch fetches and stores one page of the user's mailbox
func (m *MockSyncService) SyncBatch(ctx context.Context, userID string, opts mailsync.BatchOptions) (mailsync.BatchResult, error) {
	args := m.Called(ctx, userID, opts)
	return args.Get(0).(mailsync.BatchResult), args.Error(1)
}

// Status reports how many messages are stored for the user
func (m *MockSyncService) Status(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
