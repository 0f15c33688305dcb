// handlers/feed.go - WebSocket solve feed
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedUpgradeCheck rejects plain HTTP requests on the WebSocket route.
func FeedUpgradeCheck(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// FeedSocket streams solve events to a connected client until it hangs up.
func FeedSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		events := feedHub.Subscribe()
		defer feedHub.Unsubscribe(events)

		// Reader goroutine: drain client frames and detect disconnect
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Feed write failed: %v", err)
					return
				}
			case <-done:
				return
			}
		}
	})
}
