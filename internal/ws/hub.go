package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Envelope is the wire format for every gateway frame, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Hub tracks which clients joined which chat rooms and fans frames out to
// them. A client may sit in any number of rooms at once.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[int64]map[*Client]bool
	logger *zerolog.Logger
}

func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[*Client]bool),
		logger: logger,
	}
}

// Join adds the client to a chat room.
func (h *Hub) Join(chatID int64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[chatID] = room
	}
	room[client] = true
}

// RemoveClient drops the client from every room it joined and closes its
// send channel. The close happens under the write lock so it cannot
// interleave with a broadcast delivering under the read lock.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for chatID, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
	client.closeSend()
}

// Broadcast sends the frame to every client in the room, sender included.
func (h *Hub) Broadcast(chatID int64, frame []byte) {
	h.send(chatID, frame, nil)
}

// BroadcastExcept sends the frame to every client in the room except one.
func (h *Hub) BroadcastExcept(chatID int64, except *Client, frame []byte) {
	h.send(chatID, frame, except)
}

// send delivers while holding the read lock: RemoveClient closes send
// channels under the write lock, so a delivery can never race a close.
// Deliveries are non-blocking, so holding the lock is cheap.
func (h *Hub) send(chatID int64, frame []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[chatID] {
		if client == except {
			continue
		}
		if !client.enqueue(frame) {
			h.logger.Warn().Str("client_id", client.id).Int64("chat_id", chatID).Msg("send buffer full, dropping frame")
		}
	}
}

// RoomSize reports how many clients are currently in a room.
func (h *Hub) RoomSize(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
