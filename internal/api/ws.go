package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"safety-service/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SubscribeUser handles GET /ws/user/:user_id, joining the subject's own room.
func (h *Handler) SubscribeUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	h.subscribe(c, strconv.Itoa(userID))
}

// SubscribeGlobal handles GET /ws/global, joining the all-alerts room.
func (h *Handler) SubscribeGlobal(c *gin.Context) {
	h.subscribe(c, realtime.GlobalRoom)
}

func (h *Handler) subscribe(c *gin.Context, room string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for room %s: %v", room, err)
		return
	}

	h.hub.Add(room, conn)
	defer func() {
		h.hub.Remove(room, conn)
		conn.Close()
	}()

	// Subscribers only receive; drain until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
