package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/mapnav/internal/adapters/nats"
	"github.com/samirrijal/mapnav/internal/pkg/metrics"
)

// WebSocketHandler returns a handler that relays location events from NATS to the
// connected client. Clients only listen; any message they send is ignored.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		write := func(msgType int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(msgType, data)
		}

		sub, err := nc.Subscribe(natsadapter.SubjectLocations, func(msg *nats.Msg) {
			_ = write(websocket.TextMessage, json.RawMessage(msg.Data))
		})
		if err != nil {
			slog.Error("ws subscribe failed", "remote", remoteAddr, "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
