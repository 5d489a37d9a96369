package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	ws "github.com/guildlog/guildlog-backend/internal/websocket"
	gorillaws "github.com/gorilla/websocket"
)

// WebSocketHandler upgrades connections and attaches them to the hub
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *ws.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Serve handles GET /ws
func (h *WebSocketHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed",
				slog.String("remote_ip", c.RealIP()),
				slog.Any("error", err))
		}
		return nil
	}

	client := ws.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
