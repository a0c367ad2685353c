// Package notify fans status-change notifications out to connected
// WebSocket clients, grouped by centra.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/server/models"
)

// Event is the JSON frame pushed to subscribers.
type Event struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	CentraID  int64     `json:"centra_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

const eventNotification = "notification"

// Hub tracks live subscribers per centra.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	log     logging.Logger
}

func NewHub(l logging.Logger) *Hub {
	if l == nil {
		l = logging.Nop{}
	}
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		log:     l.With("module", "notify"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.centraID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.centraID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes c and closes its send channel. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.centraID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.centraID)
	}
}

// Publish pushes n to every subscriber of its centra. Slow subscribers
// whose buffer is full miss the frame; the notification log still has it.
func (h *Hub) Publish(n *models.Notification) {
	if n == nil {
		return
	}
	data, err := json.Marshal(Event{
		Type:      eventNotification,
		ID:        n.ID,
		CentraID:  n.CentraID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		IsRead:    n.IsRead,
	})
	if err != nil {
		h.log.Error(context.Background(), "marshal notification", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[n.CentraID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn(context.Background(), "subscriber buffer full, dropping frame",
				"centra_id", n.CentraID, "notification_id", n.ID)
		}
	}
}

// ClientCount reports subscribers for one centra.
func (h *Hub) ClientCount(centraID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[centraID])
}

// Total reports subscribers across all centras.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
