package services

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"taskhive-backend/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NotificationMessage is the payload pushed to connected clients
type NotificationMessage struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title,omitempty"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// WebSocketManager handles all WebSocket connections
type WebSocketManager struct {
	clients    map[string]*websocket.Conn // normalized email -> connection
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	register   chan *ClientConnection
	unregister chan *ClientConnection
}

// ClientConnection represents a client WebSocket connection
type ClientConnection struct {
	Email      string
	Connection *websocket.Conn
}

// Global WebSocket manager instance
var wsManager *WebSocketManager
var once sync.Once

// GetWebSocketManager returns singleton WebSocket manager
func GetWebSocketManager() *WebSocketManager {
	once.Do(func() {
		wsManager = &WebSocketManager{
			clients: make(map[string]*websocket.Conn),
			upgrader: websocket.Upgrader{
				CheckOrigin: func(r *http.Request) bool {
					origin := r.Header.Get("Origin")
					if origin == "" || origin == config.GetConfig().FrontendURL {
						return true
					}
					log.Printf("🚫 WebSocket connection rejected from origin: %s", origin)
					return false
				},
			},
			register:   make(chan *ClientConnection, 100),
			unregister: make(chan *ClientConnection, 100),
		}
		go wsManager.run()
	})
	return wsManager
}

// NormalizeKey lowercases and trims an email used as a connection key
func NormalizeKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// run handles WebSocket manager event loop
func (wsm *WebSocketManager) run() {
	for {
		select {
		case client := <-wsm.register:
			wsm.registerClient(client)

		case client := <-wsm.unregister:
			wsm.unregisterClient(client)
		}
	}
}

// registerClient adds a new client connection
func (wsm *WebSocketManager) registerClient(client *ClientConnection) {
	wsm.mutex.Lock()
	defer wsm.mutex.Unlock()

	// Close existing connection if any
	if existingConn, exists := wsm.clients[client.Email]; exists {
		existingConn.Close()
	}

	wsm.clients[client.Email] = client.Connection
	log.Printf("🔌 WebSocket client connected: %s (Total: %d)", client.Email, len(wsm.clients))
}

// unregisterClient removes a client connection
func (wsm *WebSocketManager) unregisterClient(client *ClientConnection) {
	wsm.mutex.Lock()
	defer wsm.mutex.Unlock()

	if _, exists := wsm.clients[client.Email]; exists {
		delete(wsm.clients, client.Email)
		client.Connection.Close()
		log.Printf("🔌 WebSocket client disconnected: %s (Total: %d)", client.Email, len(wsm.clients))
	}
}

// SendToEmail sends message to the client connected under the given email
func (wsm *WebSocketManager) SendToEmail(email string, message *NotificationMessage) error {
	key := NormalizeKey(email)

	wsm.mutex.RLock()
	conn, exists := wsm.clients[key]
	wsm.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("client %s not connected", key)
	}

	err := conn.WriteJSON(message)
	if err != nil {
		log.Printf("❌ Failed to send message to %s: %v", key, err)
		go func() {
			wsm.unregister <- &ClientConnection{Email: key, Connection: conn}
		}()
		return err
	}

	log.Printf("📱 Message sent to %s: %s", key, message.Message)
	return nil
}

// HandleWebSocketConnection upgrades HTTP connection to WebSocket
func (wsm *WebSocketManager) HandleWebSocketConnection(c *gin.Context) {
	email := NormalizeKey(c.Param("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := wsm.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Failed to upgrade WebSocket: %v", err)
		return
	}

	client := &ClientConnection{
		Email:      email,
		Connection: conn,
	}

	wsm.register <- client

	defer func() {
		wsm.unregister <- client
	}()

	// Keep connection alive and handle incoming messages
	for {
		var message map[string]interface{}
		err := conn.ReadJSON(&message)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket error for %s: %v", email, err)
			}
			break
		}

		if msgType, ok := message["type"].(string); ok && msgType == "ping" {
			wsm.SendToEmail(email, &NotificationMessage{
				Type:      "pong",
				Message:   "pong",
				Timestamp: time.Now().UTC(),
			})
		}
	}
}

// GetConnectionCount returns number of active connections
func (wsm *WebSocketManager) GetConnectionCount() int {
	wsm.mutex.RLock()
	defer wsm.mutex.RUnlock()
	return len(wsm.clients)
}
