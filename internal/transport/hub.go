package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

type clientConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *clientConn) send(envelope Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(envelope)
}

// Hub tracks connected clients and fans out broadcasts
type Hub struct {
	mu      sync.Mutex
	clients map[*clientConn]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*clientConn]struct{})}
}

func (h *Hub) add(client *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = struct{}{}
}

func (h *Hub) remove(client *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends envelope to every client. Clients whose write fails are
// dropped and closed.
func (h *Hub) Broadcast(envelope Envelope) {
	h.mu.Lock()
	clients := make([]*clientConn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.send(envelope); err != nil {
			h.remove(client)
			_ = client.conn.Close()
		}
	}
}
