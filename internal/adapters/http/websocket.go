package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/propmap/internal/core/domain"
	"github.com/samirrijal/propmap/internal/core/usecases"
	"github.com/samirrijal/propmap/internal/pkg/metrics"
)

// wsEvent is sent from server to client.
type wsEvent struct {
	Type     string           `json:"type"` // "snapshot" | "ack" | "error"
	Applied  *bool            `json:"applied,omitempty"`
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
	Details  []string         `json:"details,omitempty"`
}

// ExploreWebSocketHandler streams snapshots of one explore session and
// applies commands sent by the client.
// Clients send domain.Command JSON, e.g. {"action":"search","query":"loft"}.
// Every applied change is pushed as {"type":"snapshot",...}; each command is
// answered with {"type":"ack","applied":bool} or {"type":"error",...}.
func ExploreWebSocketHandler(explore *usecases.ExploreService) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := c.Params("id")
		remoteAddr := c.RemoteAddr().String()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		snap, err := explore.Get(id)
		if err != nil {
			_ = writeJSON(wsEvent{Type: "error", Error: "unknown session"})
			return
		}
		updates, cancel, err := explore.Watch(id)
		if err != nil {
			_ = writeJSON(wsEvent{Type: "error", Error: "unknown session"})
			return
		}
		defer cancel()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Info("ws client connected", "remote", remoteAddr, "session_id", id)

		if err := writeJSON(wsEvent{Type: "snapshot", Snapshot: &snap}); err != nil {
			return
		}

		// Snapshot relay and keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case s, ok := <-updates:
					if !ok {
						// Session closed or expired
						_ = writeJSON(wsEvent{Type: "error", Error: "session closed"})
						mu.Lock()
						_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
						mu.Unlock()
						return
					}
					if err := writeJSON(wsEvent{Type: "snapshot", Snapshot: &s}); err != nil {
						return
					}
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client commands
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var cmd domain.Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				_ = writeJSON(wsEvent{Type: "error", Error: "invalid JSON"})
				continue
			}

			_, applied, err := explore.Apply(context.Background(), id, cmd)
			if err != nil {
				ev := wsEvent{Type: "error", Error: err.Error()}
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					ev.Error, ev.Details = "validation failed", ve.Details
				}
				_ = writeJSON(ev)
				continue
			}
			_ = writeJSON(wsEvent{Type: "ack", Applied: &applied})
		}

		close(done)
		slog.Info("ws client disconnected", "remote", remoteAddr, "session_id", id)
	}
}
