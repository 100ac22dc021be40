// Package websocket pushes calendar change notifications to connected
// clients. Messages are delivered only to connections of the owning user.
package websocket

import (
	"context"
	"sync"

	appLog "github.com/Tbsheff/notion-clone/internal/log"
)

// sendBuffer is the per-client queue length.
const sendBuffer = 256

type outbound struct {
	ownerID string // empty means every client
	data    []byte
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main event loop and returns when ctx is done, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			appLog.Debug("websocket client connected", "owner_id", client.ownerID, "total", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			appLog.Debug("websocket client disconnected", "owner_id", client.ownerID, "total", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if msg.ownerID != "" && client.ownerID != msg.ownerID {
					continue
				}
				if !client.deliver(msg.data) {
					// Slow consumer; drop it.
					client.close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.enqueue(outbound{data: message})
}

// BroadcastTo queues a message for the connections of one owner.
func (h *Hub) BroadcastTo(ownerID string, message []byte) {
	h.enqueue(outbound{ownerID: ownerID, data: message})
}

func (h *Hub) enqueue(msg outbound) {
	select {
	case h.broadcast <- msg:
	default:
		appLog.Info("broadcast channel full, dropping message", "owner_id", msg.ownerID)
	}
}

// Register adds a client to the hub.
// A client registered after Run has returned is closed at once.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub. It does not block once Run has
// returned.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one WebSocket connection of an owner.
type Client struct {
	hub     *Hub
	ownerID string
	send    chan []byte

	// mu guards sends on send against its close.
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new WebSocket client for ownerID.
func NewClient(hub *Hub, ownerID string) *Client {
	return &Client{
		hub:     hub,
		ownerID: ownerID,
		send:    make(chan []byte, sendBuffer),
	}
}

// OwnerID returns the user the connection belongs to.
func (c *Client) OwnerID() string { return c.ownerID }

// Send returns the send channel for the client.
func (c *Client) Send() chan []byte {
	return c.send
}

// Reply queues a message for this client only. It reports false when the
// buffer is full or the client has been closed.
func (c *Client) Reply(message []byte) bool {
	return c.deliver(message)
}

func (c *Client) deliver(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// close closes the send channel once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
