package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"safety-service/internal/logging"
)

// GlobalRoom receives every alert regardless of subject.
const GlobalRoom = "global"

const maxConnsPerRoom = 10

// Hub manages WebSocket subscribers grouped into rooms. A room is keyed by a
// user id, or GlobalRoom for dashboards observing all alerts.
type Hub struct {
	rooms  map[string]map[*websocket.Conn]bool
	mutex  sync.Mutex
	logger *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*websocket.Conn]bool),
		logger: logger,
	}
}

// Add registers a connection in a room.
func (h *Hub) Add(room string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*websocket.Conn]bool)
	}
	if len(h.rooms[room]) >= maxConnsPerRoom {
		h.logger.Warnf("Max connections reached for room %s", room)
		return
	}
	h.rooms[room][conn] = true
	h.logger.Infof("Added WebSocket connection for room %s (total: %d)", room, len(h.rooms[room]))
}

// Remove drops a connection from a room.
func (h *Hub) Remove(room string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conns, exists := h.rooms[room]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
		h.logger.Infof("Removed WebSocket connection for room %s (remaining: %d)", room, len(conns))
	}
}

// Send writes a message to every connection in a room. Delivery is
// best-effort: dead or slow connections are dropped, never waited on.
func (h *Hub) Send(room string, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, exists := h.rooms[room]
	if !exists {
		return
	}
	for conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Errorf("Failed to send WebSocket message to room %s: %v", room, err)
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.rooms, room)
	}
}
