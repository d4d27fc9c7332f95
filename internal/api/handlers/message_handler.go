package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/response"
	"github.com/inboxpilot/inboxpilot-backend/internal/repository"
	"github.com/inboxpilot/inboxpilot-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles synced message HTTP requests
type MessageHandler struct {
	messageRepo repository.MessageRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repository.MessageRepository) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo}
}

// List handles GET /api/messages
func (h *MessageHandler) List(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	opts := repository.ListOptions{
		Limit:     repository.DefaultListLimit,
		Search:    validator.SanitizeSearchTerm(c.QueryParam("search")),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}

	if l := c.QueryParam("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			return response.BadRequest(c, "invalid limit")
		}
		opts.Limit = parsed
	}
	if o := c.QueryParam("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			return response.BadRequest(c, "invalid offset")
		}
		opts.Offset = parsed
	}
	if labels := c.QueryParam("labels"); labels != "" {
		for _, label := range strings.Split(labels, ",") {
			if label = strings.TrimSpace(label); label != "" {
				opts.Labels = append(opts.Labels, label)
			}
		}
	}

	messages, total, err := h.messageRepo.List(c.Request().Context(), userID, opts)
	if err != nil {
		return response.InternalError(c, "failed to list messages")
	}

	limit := opts.Limit
	if limit > repository.MaxListLimit {
		limit = repository.MaxListLimit
	}
	return response.Paginated(c, messages, total, limit, opts.Offset)
}

// Get handles GET /api/messages/:id
func (h *MessageHandler) Get(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	id := c.Param("id")
	if id == "" {
		return response.BadRequest(c, "invalid message ID")
	}

	message, err := h.messageRepo.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "message not found")
		}
		return response.InternalError(c, "failed to get message")
	}

	return response.Success(c, message)
}
