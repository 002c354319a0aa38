package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geoengine/internal/adapters/nats"
	"github.com/samirrijal/geoengine/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to location feeds.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	PartnerID string `json:"partner_id"` // optional, "" = all partners
}

// WebSocketHandler relays partner.located events to map clients as JSON.
// Clients start subscribed to every partner and can narrow the feed with
// {"action":"subscribe","partner_id":"42"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "live updates are not configured"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		log.Info("ws client connected")

		var mu sync.Mutex
		write := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v any) {
			if data, err := json.Marshal(v); err == nil {
				_ = write(data)
			}
		}
		relay := func(msg *nats.Msg) {
			data, err := natsadapter.LocatedJSON(msg.Data)
			if err != nil {
				log.Warn("ws dropping malformed event", "subject", msg.Subject, "error", err)
				return
			}
			_ = write(data)
		}

		subs := make(map[string]*nats.Subscription)
		sub, err := nc.Subscribe(natsadapter.SubjectLocatedAll, relay)
		if err != nil {
			log.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectLocatedAll] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
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

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := natsadapter.SubjectLocatedAll
			if m.PartnerID != "" {
				subject = natsadapter.SubjectLocatedPrefix + m.PartnerID
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				// A partner filter replaces the catch-all feed.
				if subject != natsadapter.SubjectLocatedAll {
					if all, ok := subs[natsadapter.SubjectLocatedAll]; ok {
						_ = all.Unsubscribe()
						delete(subs, natsadapter.SubjectLocatedAll)
					}
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
