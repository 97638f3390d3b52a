// handlers/ws.go
package handlers

import (
	"log"
	"sync"

	"club-games-system/game"
	"club-games-system/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// wsConn adapts a websocket connection to the game core's delivery
// endpoint. Writes are serialized: timer callbacks, broadcasts and the
// read loop's replies would otherwise interleave on the wire.
type wsConn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteJSON(v)
}

func (w *wsConn) Close() error {
	return w.c.Close()
}

// SetupGameSocket mounts the realtime endpoint. Identity is bound once at
// upgrade time from the gateway's headers; inbound events never carry a
// participant id.
func SetupGameSocket(app *fiber.App, reg *game.Registry, identities *services.IdentityService) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("user_id", c.Get("X-User-ID"))
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		if userID == "" {
			log.Printf("🚫 [WS] upgrade without X-User-ID rejected")
			conn.Close()
			return
		}

		id, err := identities.Resolve(userID)
		if err != nil {
			log.Printf("🚫 [WS] identity resolution failed for %s: %v", userID, err)
			conn.WriteJSON(game.Outbound{Type: "error", Data: fiber.Map{"reason": "unknown or banned user"}})
			conn.Close()
			return
		}

		wc := &wsConn{c: conn}
		log.Printf("🔌 [WS] %s connected", id.UserID)
		defer func() {
			reg.HandleDisconnect(wc)
			log.Printf("🔌 [WS] %s disconnected", id.UserID)
		}()

		for {
			var msg game.Inbound
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			reg.HandleEvent(wc, id, msg)
		}
	}))
}
