// Package live pushes attempt-completion events to staff watching a quiz
// over WebSocket.
package live

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"classquiz/internal/apperror"
	"classquiz/internal/auth"
	"classquiz/internal/models"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Message is the frame format pushed to subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins. Adjust this in production!
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Authorize decides whether a user may subscribe to a quiz's feed.
type Authorize func(user *models.User, quizID uint) error

type Hub struct {
	rooms      map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	authorize  Authorize
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetAuthorizer installs the subscription gate. Must be called before the
// WebSocket route is served.
func (h *Hub) SetAuthorizer(fn Authorize) {
	h.authorize = fn
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	quizID uint
	done   chan struct{}
}

// Run listens on the register and unregister channels and keeps the room
// maps consistent.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.quizID]; !exists {
				h.rooms[client.quizID] = make(map[*Client]bool)
			}
			h.rooms[client.quizID][client] = true
			h.mu.Unlock()
			log.Printf("Client subscribed to quiz %d feed", client.quizID)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.quizID]; exists {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					close(client.done)
				}
				if len(room) == 0 {
					delete(h.rooms, client.quizID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// AttemptCompleted broadcasts a scored attempt to the quiz's subscribers.
// It satisfies the attempt service's Notifier port.
func (h *Hub) AttemptCompleted(quizID uint, result models.AttemptResultDTO) {
	h.BroadcastMessage(quizID, "attempt_completed", result)
}

func (h *Hub) BroadcastMessage(quizID uint, messageType string, data interface{}) {
	msg := Message{Type: messageType, Data: data}
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	h.broadcast(quizID, messageBytes)
}

func (h *Hub) broadcast(quizID uint, message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[quizID]))
	for client := range h.rooms[quizID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			h.unregister <- client
		}
	}
}

// HandleWebSocket upgrades the connection and subscribes the caller to a
// quiz feed, provided the authorizer lets them in.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["quizId"]
	quizID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		apperror.Write(w, apperror.BadRequest("Invalid quizId"))
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		apperror.Write(w, apperror.Unauthorized("Authentication required"))
		return
	}
	if h.authorize != nil {
		if err := h.authorize(user, uint(quizID)); err != nil {
			apperror.Write(w, err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		quizID: uint(quizID),
		done:   make(chan struct{}),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection; subscribers only listen, so inbound
// frames beyond control messages are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
