package notify

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// envelope is the wire shape of every pushed event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live websocket connection placed into broadcast groups at
// connect time: its own player group and, for admins, the admins group.
type Client struct {
	conn   *websocket.Conn
	userID int64
	admin  bool

	send chan envelope
	once sync.Once
}

func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans best-effort events out to connected clients. Delivery is
// lossy: a slow client has its oldest queued event dropped rather than
// blocking the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds a verified connection to its groups and starts its writer.
func (h *Hub) Register(conn *websocket.Conn, userID int64, admin bool) *Client {
	client := &Client{
		conn:   conn,
		userID: userID,
		admin:  admin,
		send:   make(chan envelope, 16),
	}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go func() {
		for msg := range client.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write to user %d: %v", userID, err)
				return
			}
		}
	}()
	return client
}

// Unregister drops the connection from all groups and stops its writer.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()
	if ok {
		client.close()
	}
}

// ToUser sends to every connection of one player.
func (h *Hub) ToUser(userID int64, event string, payload any) {
	h.broadcast(func(c *Client) bool { return c.userID == userID }, event, payload)
}

// ToAdmins sends to every connected admin.
func (h *Hub) ToAdmins(event string, payload any) {
	h.broadcast(func(c *Client) bool { return c.admin }, event, payload)
}

func (h *Hub) broadcast(member func(*Client) bool, event string, payload any) {
	msg := envelope{Event: event, Data: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !member(client) {
			continue
		}
		select {
		case client.send <- msg:
		default:
			// Drop the oldest queued event so a stalled client cannot
			// block everyone else.
			select {
			case <-client.send:
			default:
			}
			select {
			case client.send <- msg:
			default:
			}
		}
	}
}
