package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_monitor/internal/models"
	"github.com/gorilla/websocket"
)

// Message types pushed to dashboards
const (
	MessageConnected    = "connected"
	MessageEvaluation   = "evaluation"
	MessageAlert        = "alert"
	MessageSessionReset = "session_reset"
)

// Client represents a WebSocket client connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	location string // Optional: only receive messages for this location
}

// Hub maintains active WebSocket connections and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// Message represents a WebSocket message structure
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// envelope carries an encoded message and the location it concerns
type envelope struct {
	location string
	data     []byte
}

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Dashboard is served from a different origin; CORS policy lives in the router
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client connected. Total clients: %d", total)

			// Send welcome message
			welcome := Message{
				Type:      MessageConnected,
				Timestamp: time.Now(),
				Data:      map[string]string{"status": "connected"},
			}
			if data, err := json.Marshal(welcome); err == nil {
				select {
				case client.send <- data:
				default:
					h.drop(client)
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client disconnected. Total clients: %d", len(h.clients))
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients {
				if client.location != "" && message.location != "" && client.location != message.location {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				h.drop(client)
			}
		}
	}
}

// drop removes a client whose send buffer is full
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// publish encodes and queues a message for broadcast
func (h *Hub) publish(msgType, location string, data interface{}) {
	message := Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}

	encoded, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msgType, err)
		return
	}

	select {
	case h.broadcast <- envelope{location: location, data: encoded}:
	default:
		log.Printf("Broadcast channel is full, dropping %s message", msgType)
	}
}

// BroadcastEvaluation broadcasts a cycle result to all connected clients
func (h *Hub) BroadcastEvaluation(eval *models.Evaluation) {
	h.publish(MessageEvaluation, eval.Location, eval)
}

// BroadcastAlert broadcasts an unsafe-water alert to all connected clients
func (h *Hub) BroadcastAlert(record *models.AlertRecord) {
	h.publish(MessageAlert, record.Location, record)
}

// BroadcastSessionReset tells dashboards to clear their charts and alert tables
func (h *Hub) BroadcastSessionReset() {
	h.publish(MessageSessionReset, "", map[string]string{"status": "reset"})
}

// GetConnectedClientsCount returns the number of connected clients
func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles WebSocket connection requests
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	// Get location filter from query parameter if provided
	location := r.URL.Query().Get("location")

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		location: location,
	}

	client.hub.register <- client

	// Start goroutines for handling the client
	go client.writePump()
	go client.readPump()
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Set read deadline and pong handler
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		log.Printf("Received message from client: %s", message)
	}
}

// writePump handles writing messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON message per frame so browsers can JSON.parse each event
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
