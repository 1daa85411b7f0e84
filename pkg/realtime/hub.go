// Package realtime pushes typed update events to connected clients over
// WebSocket, scoped to per-user rooms.
//
// Delivery is fire-and-forget: publishing happens after the database commit,
// a slow or absent client misses the event, and the client reconciles with a
// full re-fetch on reconnect. Per-connection ordering is preserved because
// each client drains its own send channel in order.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/adforge/adforge/pkg/metrics"
)

// outbound is one marshalled event addressed to a room.
type outbound struct {
	room    string
	payload []byte
}

// Hub maintains the room registry and fans events out to room members.
// All registry mutation happens on the Run goroutine; connect/disconnect and
// publish communicate with it over channels, so no locks are needed.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan outbound
	log        *slog.Logger
}

// NewHub creates a hub. Call hub.Run(ctx) in its own goroutine at startup.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan outbound, 256),
		log:        log,
	}
}

// Run is the hub event loop. It owns the room registry and exits when ctx is
// cancelled, closing every client send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
			}
			h.rooms = make(map[string]map[*Client]struct{})
			return

		case c := <-h.register:
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*Client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			metrics.ConnectedClients.Inc()
			h.log.Info("realtime: client joined", "room", c.room, "members", len(h.rooms[c.room]))

		case c := <-h.unregister:
			if clients, ok := h.rooms[c.room]; ok {
				if _, member := clients[c]; member {
					delete(clients, c)
					close(c.send)
					metrics.ConnectedClients.Dec()
					if len(clients) == 0 {
						delete(h.rooms, c.room)
					}
					h.log.Info("realtime: client left", "room", c.room)
				}
			}

		case msg := <-h.publish:
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.payload:
				default:
					// Client can't keep up: drop it rather than block the hub.
					delete(h.rooms[msg.room], c)
					close(c.send)
					metrics.ConnectedClients.Dec()
				}
			}
		}
	}
}

// Publish marshals ev and queues it for every member of room. Best-effort:
// marshal errors and a saturated hub are logged and swallowed, never
// surfaced to the caller.
func (h *Hub) Publish(room string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("realtime: marshal event", "type", ev.Type, "error", err)
		return
	}

	select {
	case h.publish <- outbound{room: room, payload: payload}:
		metrics.EventsPublished.WithLabelValues(ev.Type).Inc()
	default:
		h.log.Warn("realtime: publish queue full, event dropped", "room", room, "type", ev.Type)
	}
}
