package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safety-service/internal/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "debug")
	require.NoError(t, err)
	return logger
}

// wsClient dials a test server that registers the connection in room.
func wsClient(t *testing.T, hub *Hub, room string) *websocket.Conn {
	t.Helper()
	var upgrader websocket.Upgrader
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Add(room, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("connection was not registered")
	}
	return client
}

func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestHubSendReachesRoomSubscribers(t *testing.T) {
	hub := NewHub(testLogger(t))
	client := wsClient(t, hub, "7")

	hub.Send("7", []byte("hello"))
	assert.Equal(t, "hello", string(readMessage(t, client)))
}

func TestHubSendToEmptyRoomDoesNotBlock(t *testing.T) {
	hub := NewHub(testLogger(t))
	done := make(chan struct{})
	go func() {
		hub.Send("nobody", []byte("ignored"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a room with no subscribers")
	}
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub(testLogger(t))
	seven := wsClient(t, hub, "7")
	eight := wsClient(t, hub, "8")

	hub.Send("7", []byte("for seven"))
	assert.Equal(t, "for seven", string(readMessage(t, seven)))

	require.NoError(t, eight.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := eight.ReadMessage()
	assert.Error(t, err, "room 8 must not receive room 7 traffic")
}

func TestBroadcasterPublishesToUserAndGlobalRooms(t *testing.T) {
	hub := NewHub(testLogger(t))
	user := wsClient(t, hub, "42")
	global := wsClient(t, hub, GlobalRoom)

	b := NewBroadcaster(hub, nil, testLogger(t))
	event := AlertEvent{
		UserID:    42,
		Name:      "Asha",
		Message:   "Emergency assistance needed",
		AlertID:   uuid.New(),
		Address:   "Unknown Location",
		Timestamp: time.Now().UTC(),
	}
	b.Publish(context.Background(), event)

	for _, conn := range []*websocket.Conn{user, global} {
		var got AlertEvent
		require.NoError(t, json.Unmarshal(readMessage(t, conn), &got))
		assert.Equal(t, event.AlertID, got.AlertID)
		assert.Equal(t, 42, got.UserID)
	}
}
