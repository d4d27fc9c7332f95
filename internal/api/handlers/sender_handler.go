package handlers

import (
	"sort"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/response"
	"github.com/inboxpilot/inboxpilot-backend/internal/classify"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/labstack/echo/v4"
)

// SenderHandler handles grouped-sender HTTP requests
type SenderHandler struct {
	messageRepo repository.MessageRepository
	classifier  classify.Classifier
}

// NewSenderHandler creates a new SenderHandler
func NewSenderHandler(messageRepo repository.MessageRepository, classifier classify.Classifier) *SenderHandler {
	return &SenderHandler{
		messageRepo: messageRepo,
		classifier:  classifier,
	}
}

// SenderEmail is one address within an organization group.
type SenderEmail struct {
	Email        string `json:"email"`
	MessageCount int64  `json:"message_count"`
	LatestDate   string `json:"latest_date,omitempty"`
}

// SenderGroup is all addresses classified into one organization.
type SenderGroup struct {
	OrganizationName string        `json:"organization_name"`
	Emails           []SenderEmail `json:"emails"`
	TotalMessages    int64         `json:"total_messages"`
}

// List handles GET /api/senders
func (h *SenderHandler) List(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	ctx := c.Request().Context()
	aggregates, err := h.messageRepo.GroupBySender(ctx, userID)
	if err != nil {
		return response.InternalError(c, "failed to group senders")
	}

	groups := make(map[string]*SenderGroup)
	var order []string
	for _, agg := range aggregates {
		orgName, err := h.classifier.Classify(ctx, agg.From)
		if err != nil || orgName == "" {
			orgName = agg.From
		}

		group, ok := groups[orgName]
		if !ok {
			group = &SenderGroup{OrganizationName: orgName}
			groups[orgName] = group
			order = append(order, orgName)
		}
		group.Emails = append(group.Emails, SenderEmail{
			Email:        agg.From,
			MessageCount: agg.MessageCount,
			LatestDate:   agg.LatestDate,
		})
		group.TotalMessages += agg.MessageCount
	}

	result := make([]SenderGroup, 0, len(order))
	for _, orgName := range order {
		group := groups[orgName]
		sort.SliceStable(group.Emails, func(i, j int) bool {
			return group.Emails[i].MessageCount > group.Emails[j].MessageCount
		})
		result = append(result, *group)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalMessages > result[j].TotalMessages
	})

	return response.Success(c, result)
}
