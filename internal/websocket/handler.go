package websocket

import (
	"voicenotes-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes exposes the per-user event stream at /ws/notes. The JWT
// middleware runs before the upgrade, so an unauthenticated socket never
// reaches the hub.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	h := r.Group("/ws")
	h.Use(serverutils.JwtMiddleware)
	h.Use(func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/notes", websocket.New(func(conn *websocket.Conn) {
		userIdStr, _ := conn.Locals("user_id").(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			conn.Close()
			return
		}
		ServeWs(hub, conn, userId)
	}))
}

// ServeWs wires a freshly upgraded connection into the hub.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, UserID: userID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // runs in the handler goroutine
}
