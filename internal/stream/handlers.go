package stream

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// pingInterval keeps idle view connections from being dropped by proxies.
var pingInterval = 30 * time.Second

// RegisterRoutes exposes a player's interaction broadcasts to open views.
func RegisterRoutes(r fiber.Router, hub *Hub) {
	interval := pingInterval
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws/:playerID", websocket.New(func(c *websocket.Conn) {
		client := hub.Register(c.Params("playerID"))
		done := make(chan struct{})
		go writeLoop(c, client, interval, done)

		// reads only detect the peer going away
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}

// writeLoop forwards hub payloads to the connection until the client is
// unregistered or a write fails. It drains Send after a failure so Unregister
// can close it.
func writeLoop(c *websocket.Conn, client *Client, interval time.Duration, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				drain(client.Send)
				return
			}
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				drain(client.Send)
				return
			}
		}
	}
}

func drain(ch <-chan []byte) {
	for range ch {
	}
}
