package handlers

import (
	"context"
	"errors"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/response"
	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/inboxpilot/inboxpilot-backend/internal/mailsync"
	"github.com/labstack/echo/v4"
)

// SyncService is the sync surface the handler depends on.
type SyncService interface {
	SyncAll(ctx context.Context, userID string) (int64, error)
	SyncBatch(ctx context.Context, userID string, opts mailsync.BatchOptions) (mailsync.BatchResult, error)
	Status(ctx context.Context, userID string) (int64, error)
}

// SyncHandler handles mailbox sync HTTP requests
type SyncHandler struct {
	sync SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(sync SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// SyncBatchRequest is the body of POST /api/sync/batch
type SyncBatchRequest struct {
	BatchSize     int    `json:"batch_size"`
	PageToken     string `json:"page_token"`
	AccurateTotal int64  `json:"accurate_total"`
}

// SyncAll handles POST /api/sync
func (h *SyncHandler) SyncAll(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	total, err := h.sync.SyncAll(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"total_synced": total})
}

// SyncBatch handles POST /api/sync/batch
func (h *SyncHandler) SyncBatch(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	var req SyncBatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.BatchSize < 0 || req.AccurateTotal < 0 {
		return response.BadRequest(c, "batch_size and accurate_total must not be negative")
	}

	result, err := h.sync.SyncBatch(c.Request().Context(), userID, mailsync.BatchOptions{
		BatchSize:     req.BatchSize,
		PageToken:     req.PageToken,
		AccurateTotal: req.AccurateTotal,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthenticated) {
			return response.Unauthenticated(c, "no mail account connected")
		}
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	count, err := h.sync.Status(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"total_synced_messages": count,
		"user_id":               userID,
	})
}
