package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"rental-market/internal/models"
	"rental-market/internal/observability"
)

// Hub groups live clients into chat rooms and fans persisted messages out to them.
type Hub struct {
	rooms  map[int]map[*Client]struct{}
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[int]map[*Client]struct{}),
		logger: logger,
	}
}

// Join subscribes c to roomID. Joining twice is a no-op.
func (h *Hub) Join(roomID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	c.rooms[roomID] = struct{}{}
}

// Leave unsubscribes c from roomID; idempotent.
func (h *Hub) Leave(roomID int, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomID, c)
}

func (h *Hub) leaveLocked(roomID int, c *Client) {
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(c.rooms, roomID)
}

// Unregister removes c from every room and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	for roomID := range c.rooms {
		h.leaveLocked(roomID, c)
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// roomSize reports how many clients are subscribed to roomID.
func (h *Hub) roomSize(roomID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish implements the chat relay for a single instance.
func (h *Hub) Publish(_ context.Context, msg models.Message) error {
	h.Deliver(msg)
	return nil
}

// Deliver sends msg to every client currently in its room and returns the
// number of clients that accepted it. Clients whose queue is full are dropped.
func (h *Hub) Deliver(msg models.Message) int {
	payload, err := encodeFrame(models.EventReceiveMessage, msg)
	if err != nil {
		h.logger.Error("encode message frame", zap.Int("room_id", msg.RoomID), zap.Error(err))
		return 0
	}

	var slow []*Client
	delivered := 0
	h.mu.RLock()
	for c := range h.rooms[msg.RoomID] {
		select {
		case c.send <- payload:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			h.logger.Warn("dropping slow websocket client",
				zap.String("conn_id", c.info.ConnID),
				zap.Int("user_id", c.info.UserID),
				zap.Int("room_id", msg.RoomID),
			)
			h.unregisterLocked(c)
			observability.IncWSEvent("chat", "ws_error")
		}
		h.mu.Unlock()
	}
	observability.AddMessagesRelayed(delivered)
	return delivered
}

// sendTo queues a frame for a single client. It reports false when the client
// is gone or its queue is full.
func (h *Hub) sendTo(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}
