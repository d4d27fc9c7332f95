package handlers

import (
	"log/slog"

	"github.com/inboxpilot/inboxpilot-backend/internal/api/middleware"
	"github.com/inboxpilot/inboxpilot-backend/internal/api/response"
	ws "github.com/inboxpilot/inboxpilot-backend/internal/websocket"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WSHandler upgrades connections for sync progress streaming
type WSHandler struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Connect handles GET /ws
func (h *WSHandler) Connect(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Unauthenticated(c, "user not authenticated")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		}
		return nil
	}

	client := ws.NewClient(h.hub, conn, userID, h.logger)
	h.hub.Register(client)

	// Subscribe immediately so progress starts flowing without a
	// subscribe frame.
	h.hub.Subscribe(client, userID)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
