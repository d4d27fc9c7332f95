package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/inboxpilot/inboxpilot-backend/internal/classify"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/inboxpilot/inboxpilot-backend/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSenderList_GroupsByOrganization(t *testing.T) {
	repo := new(mocks.MockMessageRepository)
	repo.On("GroupBySender", mock.Anything, "user-1").Return([]repository.SenderAggregate{
		{From: "order@amazon.com", MessageCount: 10, LatestDate: "2025-06-01 12:00:00"},
		{From: "billing@chase.com", MessageCount: 8},
		{From: "shipping@amazonses.com", MessageCount: 15},
	}, nil)

	handler := NewSenderHandler(repo, classify.NewDomainClassifier())
	c, rec := newAuthedContext(t, http.MethodGet, "/api/senders")

	require.NoError(t, handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []SenderGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)

	// Amazon has the higher volume, so it leads
	amazon := resp.Data[0]
	assert.Equal(t, "Amazon", amazon.OrganizationName)
	assert.Equal(t, int64(25), amazon.TotalMessages)
	require.Len(t, amazon.Emails, 2)
	// Within the group, the busiest address leads
	assert.Equal(t, "shipping@amazonses.com", amazon.Emails[0].Email)

	chase := resp.Data[1]
	assert.Equal(t, "Chase Bank", chase.OrganizationName)
	assert.Equal(t, int64(8), chase.TotalMessages)
}

func TestSenderList_Empty(t *testing.T) {
	repo := new(mocks.MockMessageRepository)
	repo.On("GroupBySender", mock.Anything, "user-1").Return([]repository.SenderAggregate{}, nil)

	handler := NewSenderHandler(repo, classify.NewDomainClassifier())
	c, rec := newAuthedContext(t, http.MethodGet, "/api/senders")

	require.NoError(t, handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []SenderGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)
}

func TestSenderList_ClassifierErrorFallsBackToAddress(t *testing.T) {
	repo := new(mocks.MockMessageRepository)
	repo.On("GroupBySender", mock.Anything, "user-1").Return([]repository.SenderAggregate{
		{From: "order@amazon.com", MessageCount: 3},
	}, nil)

	classifier := new(mocks.MockClassifier)
	classifier.On("Classify", mock.Anything, "order@amazon.com").
		Return("", errors.New("enrichment unavailable"))

	handler := NewSenderHandler(repo, classifier)
	c, rec := newAuthedContext(t, http.MethodGet, "/api/senders")

	require.NoError(t, handler.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []SenderGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	// The raw address stands in when classification fails
	assert.Equal(t, "order@amazon.com", resp.Data[0].OrganizationName)
}

func TestSenderList_ClassifierFallbackToAddress(t *testing.T) {
	repo := new(mocks.MockMessageRepository)
	repo.On("GroupBySender", mock.Anything, "user-1").Return([]repository.SenderAggregate{
		{From: "not-an-email", MessageCount: 1},
	}, nil)

	handler := NewSenderHandler(repo, classify.NewDomainClassifier())
	c, rec := newAuthedContext(t, http.MethodGet, "/api/senders")

	require.NoError(t, handler.List(c))

	var resp struct {
		Data []SenderGroup `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "not-an-email", resp.Data[0].OrganizationName)
}
