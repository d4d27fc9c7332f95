package handlers

import (
	"errors"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/response"
	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/inboxpilot/inboxpilot-backend/internal/gmailapi"
	"github.com/labstack/echo/v4"
)

// GmailHandler handles provider passthrough HTTP requests
type GmailHandler struct {
	clients gmailapi.Factory
}

// NewGmailHandler creates a new GmailHandler
func NewGmailHandler(clients gmailapi.Factory) *GmailHandler {
	return &GmailHandler{clients: clients}
}

// LabelOption is one label formatted for UI filter dropdowns.
type LabelOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProfileResponse is the provider mailbox profile surfaced to the UI.
type ProfileResponse struct {
	EmailAddress  string `json:"email_address"`
	MessagesTotal int64  `json:"messages_total"`
	ThreadsTotal  int64  `json:"threads_total"`
	HistoryID     uint64 `json:"history_id"`
}

// Labels handles GET /api/labels
func (h *GmailHandler) Labels(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	ctx := c.Request().Context()
	client, err := h.clients.ClientFor(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			return response.Unauthenticated(c, "no mail account connected")
		}
		return response.Error(c, apperrors.Upstream("failed to connect to provider", err))
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return response.Error(c, apperrors.Upstream("failed to fetch labels", err))
	}

	// Hidden labels are not useful as filter options.
	options := make([]LabelOption, 0, len(labels))
	for _, label := range labels {
		if label == nil || label.LabelListVisibility == "" {
			continue
		}
		options = append(options, LabelOption{
			Label: label.Name,
			Value: label.Id,
		})
	}

	return response.Success(c, options)
}

// Profile handles GET /api/profile
func (h *GmailHandler) Profile(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	ctx := c.Request().Context()
	client, err := h.clients.ClientFor(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			return response.Unauthenticated(c, "no mail account connected")
		}
		return response.Error(c, apperrors.Upstream("failed to connect to provider", err))
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return response.Error(c, apperrors.Upstream("failed to fetch profile", err))
	}

	return response.Success(c, ProfileResponse{
		EmailAddress:  profile.EmailAddress,
		MessagesTotal: profile.MessagesTotal,
		ThreadsTotal:  profile.ThreadsTotal,
		HistoryID:     profile.HistoryId,
	})
}
