// Package notifications provides real-time delivery of chat messages and
// room events over websockets, with Redis pub/sub fan-out across instances.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"taskhive/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user.
	maxConnsPerUser = 8
	// Max total connections.
	maxTotalConns = 10000
)

// Event is the wire format for everything pushed to chat websockets.
type Event struct {
	Type     string      `json:"type"` // "message", "read", "typing", "user_status"
	RoomID   uint        `json:"room_id,omitempty"`
	UserID   uint        `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Hub is a room-centric websocket hub. A client subscribes to the rooms it
// is viewing; room broadcasts reach every subscribed client.
type Hub struct {
	mu sync.RWMutex

	// roomID -> subscribed clients
	rooms map[uint]map[*Client]struct{}

	// userID -> that user's active clients
	userConns map[uint]map[*Client]struct{}

	// client -> roomIDs it joined, for cleanup on unregister
	clientRooms map[*Client]map[uint]struct{}

	totalConns int
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "chat hub" }

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[uint]map[*Client]struct{}),
		userConns:   make(map[uint]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[uint]struct{}),
	}
}

// Register creates a Client for the given connection, enforcing per-user and
// total connection limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.userConns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.userConns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.clientRooms[client] = make(map[uint]struct{})
	h.totalConns++

	return client, nil
}

// RegisterClient attaches an already constructed client to the hub. Register
// is the normal entry point; this exists for pre-built clients.
func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.Hub == nil {
		client.Hub = h
	}
	if h.userConns[client.UserID] == nil {
		h.userConns[client.UserID] = make(map[*Client]struct{})
	}
	if _, exists := h.userConns[client.UserID][client]; exists {
		return
	}
	h.userConns[client.UserID][client] = struct{}{}
	h.clientRooms[client] = make(map[uint]struct{})
	h.totalConns++
}

// UnregisterClient removes a client and its room subscriptions.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.userConns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	h.totalConns--
	if len(m) == 0 {
		delete(h.userConns, client.UserID)
	}

	for roomID := range h.clientRooms[client] {
		h.leaveRoomLocked(client, roomID)
	}
	delete(h.clientRooms, client)
}

// JoinRoom subscribes a client to a room's broadcasts.
func (h *Hub) JoinRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clientRooms[client]; !ok {
		return
	}

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	if _, already := h.rooms[roomID][client]; already {
		return
	}
	h.rooms[roomID][client] = struct{}{}
	h.clientRooms[client][roomID] = struct{}{}

	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(roomID)).Set(float64(len(h.rooms[roomID])))
}

// LeaveRoom unsubscribes a client from a room.
func (h *Hub) LeaveRoom(client *Client, roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveRoomLocked(client, roomID)
	if rooms, ok := h.clientRooms[client]; ok {
		delete(rooms, roomID)
	}
}

func (h *Hub) leaveRoomLocked(client *Client, roomID uint) {
	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, roomID)
	}
	observability.WebSocketRoomConnections.WithLabelValues(roomLabel(roomID)).Set(float64(len(clients)))
}

// BroadcastToRoom sends an event to every client subscribed to the room.
func (h *Hub) BroadcastToRoom(roomID uint, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Hub: failed to marshal event for room %d: %v", roomID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		client.TrySend(data)
	}
}

// BroadcastToUser sends raw data to every connection a user holds.
func (h *Hub) BroadcastToUser(userID uint, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.userConns[userID] {
		client.TrySend(data)
	}
}

// IsOnline reports whether a user has at least one active connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.userConns[userID]
	return ok && len(clients) > 0
}

// RoomSubscribers returns the user IDs currently subscribed to a room.
func (h *Hub) RoomSubscribers(roomID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uint]struct{})
	out := make([]uint, 0, len(h.rooms[roomID]))
	for client := range h.rooms[roomID] {
		if _, dup := seen[client.UserID]; dup {
			continue
		}
		seen[client.UserID] = struct{}{}
		out = append(out, client.UserID)
	}
	return out
}

// StartWiring subscribes this hub to the Redis room channels so events
// published by other instances reach locally connected clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartRoomSubscriber(ctx, func(channel, payload string) {
		var roomID uint
		if _, err := fmt.Sscanf(channel, "chat:room:%d", &roomID); err != nil {
			log.Printf("Hub: invalid room channel: %s", channel)
			return
		}

		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Printf("Hub: failed to parse event from channel %s: %v", channel, err)
			return
		}
		event.RoomID = roomID

		h.BroadcastToRoom(roomID, event)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}

	h.rooms = make(map[uint]map[*Client]struct{})
	h.userConns = make(map[uint]map[*Client]struct{})
	h.clientRooms = make(map[*Client]map[uint]struct{})
	h.totalConns = 0

	return nil
}

func roomLabel(roomID uint) string {
	return strconv.FormatUint(uint64(roomID), 10)
}
