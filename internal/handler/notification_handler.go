package handler

import (
	"fundocs-be/internal/pkg/logger"
	"fundocs-be/internal/pkg/serverutils"
	internalWS "fundocs-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationHandler upgrades authenticated requests to the realtime
// notification socket.
type NotificationHandler struct {
	hub    *internalWS.Hub
	gate   *serverutils.SessionGate
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, gate *serverutils.SessionGate, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		gate:   gate,
		logger: log,
	}
}

// ServeWs expects the session token as ?token= since browsers cannot set
// headers on websocket requests.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID := serverutils.UserID(c)

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.Serve(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.gate.RequireSession, h.ServeWs)
}
