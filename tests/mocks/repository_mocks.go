package mocks

import (
	"context"

	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository implements repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Upsert writes a batch of messages
func (m *MockMessageRepository) Upsert(ctx context.Context, messages []models.Message) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

// List retrieves one page of messages with the total count
func (m *MockMessageRepository) List(ctx context.Context, userID string, opts repository.ListOptions) ([]models.Message, int64, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Message), args.Get(1).(int64), args.Error(2)
}

// GetByID retrieves a message scoped to its owner
func (m *MockMessageRepository) GetByID(ctx context.Context, userID, id string) (*models.Message, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// CountByUser counts stored messages for a user
func (m *MockMessageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// GroupBySender aggregates message counts per sender address
func (m *MockMessageRepository) GroupBySender(ctx context.Context, userID string) ([]repository.SenderAggregate, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SenderAggregate), args.Error(1)
}

// MockSenderRepository implements repository.SenderRepository
type MockSenderRepository struct {
	mock.Mock
}

// FindOrCreate returns the sender row for (userID, orgName)
func (m *MockSenderRepository) FindOrCreate(ctx context.Context, userID, orgName string) (*models.Sender, error) {
	args := m.Called(ctx, userID, orgName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sender), args.Error(1)
}

// GetByUserAndOrg retrieves a sender by its owner and organization name
func (m *MockSenderRepository) GetByUserAndOrg(ctx context.Context, userID, orgName string) (*models.Sender, error) {
	args := m.Called(ctx, userID, orgName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sender), args.Error(1)
}

// ListByUser retrieves all sender rows for a user
func (m *MockSenderRepository) ListByUser(ctx context.Context, userID string) ([]models.Sender, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sender), args.Error(1)
}
