package handlers

import (
	"strconv"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sibarconnect/inbox-service/internal/auth"
	"github.com/sibarconnect/inbox-service/internal/realtime"
)

// RealtimeHandler upgrades websocket subscriptions and plugs them into the
// hub. Tokens arrive as a query parameter because browsers cannot set
// headers on websocket dials.
type RealtimeHandler struct {
	hub    *realtime.Hub
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(hub *realtime.Hub, tokens *auth.TokenManager, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, tokens: tokens, logger: logger}
}

// Upgrade gates websocket routes behind the upgrade handshake.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// CompanyStream GET /ws/:companyID delivers chat.updated events for every
// chat of the company.
func (h *RealtimeHandler) CompanyStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		companyID, ok := h.authorize(conn)
		if !ok {
			return
		}

		wrapped := newWSConn(conn)
		h.hub.SubscribeCompany(wrapped, companyID)
		defer func() {
			h.hub.UnsubscribeCompany(wrapped, companyID)
			_ = wrapped.Close()
		}()
		h.readUntilClosed(conn)
	})
}

// ChatStream GET /ws/:companyID/:chatID delivers message.created events for
// one chat.
func (h *RealtimeHandler) ChatStream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		companyID, ok := h.authorize(conn)
		if !ok {
			return
		}
		chatID, err := strconv.ParseInt(conn.Params("chatID"), 10, 64)
		if err != nil || chatID <= 0 {
			_ = conn.WriteJSON(fiber.Map{"error": "invalid chat id"})
			_ = conn.Close()
			return
		}

		wrapped := newWSConn(conn)
		h.hub.SubscribeChat(wrapped, companyID, chatID)
		defer func() {
			h.hub.UnsubscribeChat(wrapped, companyID, chatID)
			_ = wrapped.Close()
		}()
		h.readUntilClosed(conn)
	})
}

// authorize validates the token and checks it matches the path company.
func (h *RealtimeHandler) authorize(conn *websocket.Conn) (int64, bool) {
	companyID, err := strconv.ParseInt(conn.Params("companyID"), 10, 64)
	if err != nil || companyID <= 0 {
		_ = conn.WriteJSON(fiber.Map{"error": "invalid company id"})
		_ = conn.Close()
		return 0, false
	}

	claims, err := h.tokens.ParseToken(conn.Query("token"))
	if err != nil || claims.CompanyID != companyID {
		_ = conn.WriteJSON(fiber.Map{"error": "unauthorized"})
		_ = conn.Close()
		return 0, false
	}
	return companyID, true
}

// readUntilClosed drains inbound frames so control messages are processed;
// the stream is delivery-only.
func (h *RealtimeHandler) readUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// wsConn serializes writes; the underlying connection does not allow
// concurrent writers.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
