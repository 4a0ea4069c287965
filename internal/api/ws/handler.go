package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const identityKey = "ws_identity"

// Handler serves the live notification stream.
type Handler struct {
	authenticator *Authenticator
	hub           *Hub
	logger        *zap.Logger
}

// NewHandler constructs the websocket handler.
func NewHandler(authenticator *Authenticator, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{authenticator: authenticator, hub: hub, logger: logger}
}

// Upgrade gates the route to websocket handshakes and resolves the
// connection identity before the protocol switch. Anonymous identities are
// accepted too; whether they receive anything is decided downstream.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	identity := h.authenticator.Resolve(c.Context(), c.Query("token"), c.Get(fiber.HeaderCookie))
	c.Locals(identityKey, identity)
	return c.Next()
}

// Stream serves one connection for its lifetime. The identity bound at
// handshake time is never re-evaluated mid-connection.
func (h *Handler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		identity, _ := conn.Locals(identityKey).(Identity)
		if identity.Anonymous() {
			// Connected but unbound: hold the socket open, deliver nothing.
			drain(conn)
			return
		}

		userID := identity.User.ID
		deliveries := h.hub.Subscribe(userID)
		defer h.hub.Unsubscribe(userID, deliveries)

		h.logger.Debug("notification stream opened", zap.Int64("user_id", userID))

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			drain(conn)
		}()

		for {
			select {
			case <-closed:
				return
			case payload := <-deliveries:
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}
	})
}

// drain discards inbound frames until the peer closes; the stream is
// server-to-client only.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
