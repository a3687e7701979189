package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool, same-origin checks add nothing
	},
}

// handsInterval is the WebSocket broadcast period, ~30 updates per second.
const handsInterval = 33 * time.Millisecond

// HandsHandler broadcasts the per-tick hand state via WebSocket.
type HandsHandler struct {
	pipeline Pipeline
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	once     sync.Once
}

// NewHandsHandler creates a new HandsHandler reading from the pipeline.
func NewHandsHandler(p Pipeline) *HandsHandler {
	return &HandsHandler{
		pipeline: p,
		clients:  make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *HandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.once.Do(func() { go h.broadcast() })

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep the connection alive by reading messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends hand state to all connected clients.
func (h *HandsHandler) broadcast() {
	ticker := time.NewTicker(handsInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		empty := len(h.clients) == 0
		h.mu.RUnlock()
		if empty {
			continue
		}

		engineTime, hands := h.pipeline.LatestHands()

		msg, _ := json.Marshal(map[string]any{
			"time":      engineTime,
			"hands":     hands,
			"timestamp": time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
