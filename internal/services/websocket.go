package services

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sharewheels/carpool-backend/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client. One user may hold several
// connections; each gets its own Client.
type Client struct {
	UserID uint
	ConnID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Event is the envelope for every message pushed over a connection.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ChatHandler is invoked when a connected client posts a chat line to a ride
// room. It is expected to persist the message and fan it out via SendToRide.
type ChatHandler func(senderID, rideID uint, text string)

// Hub maintains the set of active clients and the per-ride rooms.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[uint]map[*Client]bool // keyed by ride id
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	log        *logger.Logger

	// OnChatMessage is set once during wiring, before Run starts.
	OnChatMessage ChatHandler
}

// NewHub creates a new WebSocket hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run starts the hub.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Info("client connected",
				logger.Uint("userId", client.UserID),
				logger.String("connId", client.ConnID))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				for rideID, room := range h.rooms {
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, rideID)
					}
				}
				close(client.Send)
			}
			h.mutex.Unlock()
			h.log.Info("client disconnected",
				logger.Uint("userId", client.UserID),
				logger.String("connId", client.ConnID))
		}
	}
}

// JoinRideRoom subscribes a client to a ride's chat room.
func (h *Hub) JoinRideRoom(client *Client, rideID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	room, ok := h.rooms[rideID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[rideID] = room
	}
	room[client] = true
}

// LeaveRideRoom removes a client from a ride's chat room.
func (h *Hub) LeaveRideRoom(client *Client, rideID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, ok := h.rooms[rideID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, rideID)
		}
	}
}

// SendToUser sends a message to every live connection of a specific user.
// Delivery is best-effort: a connection with a full send buffer is skipped.
func (h *Hub) SendToUser(userID uint, message []byte) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	delivered := 0
	for client := range h.clients {
		if client.UserID != userID {
			continue
		}
		select {
		case client.Send <- message:
			delivered++
		default:
			h.log.Warn("dropping message, send buffer full",
				logger.Uint("userId", client.UserID),
				logger.String("connId", client.ConnID))
		}
	}
	return delivered
}

// SendToRide sends a message to every connection in a ride's room.
func (h *Hub) SendToRide(rideID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.rooms[rideID] {
		select {
		case client.Send <- message:
		default:
			h.log.Warn("dropping room message, send buffer full",
				logger.Uint("userId", client.UserID),
				logger.Uint("rideId", rideID))
		}
	}
}

// SendEventToUser marshals an event and pushes it to the user's connections.
func (h *Hub) SendEventToUser(userID uint, event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", logger.Err(err))
		return 0
	}
	return h.SendToUser(userID, data)
}

// SendEventToRide marshals an event and pushes it to a ride's room.
func (h *Hub) SendEventToRide(rideID uint, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal event", logger.Err(err))
		return
	}
	h.SendToRide(rideID, data)
}

// ConnectedClients returns the number of live connections.
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and registers the connection.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Error("websocket upgrade failed", logger.Err(err))
		return
	}

	client := &Client{
		UserID: userID,
		ConnID: uuid.NewString(),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Hub:    hub,
	}

	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}

type inboundMessage struct {
	Type string `json:"type"`
	Data struct {
		RideID uint   `json:"rideId"`
		Text   string `json:"text"`
	} `json:"data"`
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read failed", logger.Err(err))
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.log.Warn("unparseable websocket message", logger.Err(err))
			continue
		}

		switch msg.Type {
		case "join":
			c.Hub.JoinRideRoom(c, msg.Data.RideID)
		case "leave":
			c.Hub.LeaveRideRoom(c, msg.Data.RideID)
		case "message":
			if c.Hub.OnChatMessage != nil && msg.Data.Text != "" {
				c.Hub.OnChatMessage(c.UserID, msg.Data.RideID, msg.Data.Text)
			}
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.log.Warn("websocket write failed", logger.Err(err))
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
