package mocks

import (
	"context"

	"github.com/inboxpilot/inboxpilot-backend/internal/gmailapi"
	"github.com/stretchr/testify/mock"
	"google.golang.org/api/gmail/v1"
)

// MockGmailClient implements gmailapi.Client
type MockGmailClient struct {
	mock.Mock
}

// ListMessages lists one page of message IDs
func (m *MockGmailClient) ListMessages(ctx context.Context, maxResults int64, pageToken string) (*gmail.ListMessagesResponse, error) {
	args := m.Called(ctx, maxResults, pageToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmail.ListMessagesResponse), args.Error(1)
}

// GetMessage fetches one message in full format
func (m *MockGmailClient) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmail.Message), args.Error(1)
}

// GetProfile fetches the user's mailbox profile
func (m *MockGmailClient) GetProfile(ctx context.Context) (*gmail.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmail.Profile), args.Error(1)
}

// ListLabels fetches all labels of the user
func (m *MockGmailClient) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gmail.Label), args.Error(1)
}

// MockGmailFactory implements gmailapi.Factory
type MockGmailFactory struct {
	mock.Mock
}

// ClientFor builds a Gmail client authenticated as a specific user
func (m *MockGmailFactory) ClientFor(ctx context.Context, userID string) (gmailapi.Client, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(gmailapi.Client), args.Error(1)
}

// MockClassifier implements classify.Classifier
type MockClassifier struct {
	mock.Mock
}

// Classify maps a sender address to an organization name
func (m *MockClassifier) Classify(ctx context.Context, fromAddress string) (string, error) {
	args := m.Called(ctx, fromAddress)
	return args.String(0), args.Error(1)
}
