// -----------------------------------------------------------------------
// WebSocket handler - pushes quote, portfolio and AI-status events to
// connected browser clients. Writes to a connection are serialized by a
// per-connection mutex.
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope for every message pushed to clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	eventService     interfaces.EventService
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	if eventService != nil {
		h.subscribeToEvents()
	}

	return h
}

// subscribeToEvents forwards application events to connected clients.
func (h *WebSocketHandler) subscribeToEvents() {
	forward := func(eventType interfaces.EventType) {
		h.eventService.Subscribe(eventType, func(ctx context.Context, event interfaces.Event) error {
			h.Broadcast(WSMessage{
				Type:    string(event.Type),
				Payload: event.Payload,
			})
			return nil
		})
	}

	forward(interfaces.EventQuoteUpdated)
	forward(interfaces.EventPortfolioRefreshed)
	forward(interfaces.EventAIStatusChanged)
	forward(interfaces.EventQuotaExceeded)
}

// Broadcast sends a message to every connected client.
func (h *WebSocketHandler) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to send message to client")
			h.removeClient(conn)
		}
	}
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", total)

	// Initial message so the client can detect a server restart
	h.sendTo(conn, WSMessage{
		Type: "connected",
		Payload: map[string]interface{}{
			"serverInstanceId": h.serverInstanceID,
			"timestamp":        time.Now().Format(time.RFC3339),
		},
	})

	// Read loop exists only to detect disconnects; clients never send
	// application messages.
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHandler) sendTo(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	mutex, ok := h.clientMutex[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	mutex.Lock()
	defer mutex.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Warn().Err(err).Str("type", msg.Type).Msg("Failed to send message to client")
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, conn)
	delete(h.clientMutex, conn)
	total := len(h.clients)
	h.mu.Unlock()

	conn.Close()
	h.logger.Debug().Msgf("WebSocket client disconnected (total: %d)", total)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
