package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sharewheels/carpool-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	hub := NewHub(&logger.Logger{Logger: zap.NewNop()})
	go hub.Run()
	return hub
}

func newTestClient(t *testing.T, hub *Hub, userID uint, connID string) *Client {
	t.Helper()
	client := &Client{
		UserID: userID,
		ConnID: connID,
		Send:   make(chan []byte, 8),
		Hub:    hub,
	}
	hub.register <- client
	require.Eventually(t, func() bool {
		hub.mutex.RLock()
		defer hub.mutex.RUnlock()
		return hub.clients[client]
	}, time.Second, time.Millisecond)
	return client
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub()

	a := newTestClient(t, hub, 1, "a")
	b := newTestClient(t, hub, 2, "b")
	assert.Equal(t, 2, hub.ConnectedClients())

	hub.unregister <- a
	assert.Eventually(t, func() bool {
		return hub.ConnectedClients() == 1
	}, time.Second, time.Millisecond)

	// The closed send channel is how the write pump learns to stop.
	_, open := <-a.Send
	assert.False(t, open)

	hub.unregister <- b
	assert.Eventually(t, func() bool {
		return hub.ConnectedClients() == 0
	}, time.Second, time.Millisecond)
}

func TestHubSendToUser(t *testing.T) {
	hub := newTestHub()

	// Two connections for user 1, one for user 2.
	a1 := newTestClient(t, hub, 1, "a1")
	a2 := newTestClient(t, hub, 1, "a2")
	b := newTestClient(t, hub, 2, "b")

	delivered := hub.SendToUser(1, []byte("hello"))
	assert.Equal(t, 2, delivered)

	assert.Equal(t, "hello", string(<-a1.Send))
	assert.Equal(t, "hello", string(<-a2.Send))
	assert.Empty(t, b.Send)

	assert.Equal(t, 0, hub.SendToUser(99, []byte("nobody home")))
}

func TestHubSendToUserSkipsFullBuffer(t *testing.T) {
	hub := newTestHub()

	client := newTestClient(t, hub, 1, "a")
	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("fill")
	}

	assert.Equal(t, 0, hub.SendToUser(1, []byte("dropped")))
}

func TestHubRideRooms(t *testing.T) {
	hub := newTestHub()

	a := newTestClient(t, hub, 1, "a")
	b := newTestClient(t, hub, 2, "b")
	c := newTestClient(t, hub, 3, "c")

	hub.JoinRideRoom(a, 7)
	hub.JoinRideRoom(b, 7)
	hub.JoinRideRoom(c, 8)

	hub.SendToRide(7, []byte("room 7"))
	assert.Equal(t, "room 7", string(<-a.Send))
	assert.Equal(t, "room 7", string(<-b.Send))
	assert.Empty(t, c.Send)

	hub.LeaveRideRoom(b, 7)
	hub.SendToRide(7, []byte("again"))
	assert.Equal(t, "again", string(<-a.Send))
	assert.Empty(t, b.Send)
}

func TestHubUnregisterLeavesRooms(t *testing.T) {
	hub := newTestHub()

	a := newTestClient(t, hub, 1, "a")
	b := newTestClient(t, hub, 2, "b")
	hub.JoinRideRoom(a, 7)
	hub.JoinRideRoom(b, 7)

	hub.unregister <- a
	assert.Eventually(t, func() bool {
		return hub.ConnectedClients() == 1
	}, time.Second, time.Millisecond)

	// Only the surviving member hears the room now.
	hub.SendToRide(7, []byte("ping"))
	assert.Equal(t, "ping", string(<-b.Send))
}

func TestHubJoinRoomRequiresRegistration(t *testing.T) {
	hub := newTestHub()

	ghost := &Client{UserID: 9, ConnID: "ghost", Send: make(chan []byte, 1), Hub: hub}
	hub.JoinRideRoom(ghost, 7)

	hub.SendToRide(7, []byte("ping"))
	assert.Empty(t, ghost.Send)
}

func TestSendEventToUser(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(t, hub, 1, "a")

	delivered := hub.SendEventToUser(1, Event{Type: "notification", Data: map[string]interface{}{"id": 5}})
	require.Equal(t, 1, delivered)

	var got Event
	require.NoError(t, json.Unmarshal(<-client.Send, &got))
	assert.Equal(t, "notification", got.Type)
}
