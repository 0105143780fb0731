package ws

import (
	"sync"

	"hilo-casino/internal/game"

	"github.com/rs/zerolog/log"
)

// Hub fans room events out to the WebSocket clients joined to each room.
// Publish runs under the room lock, so it only queues frames and never blocks.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: map[string]map[*Client]struct{}{}}
}

func (h *Hub) Subscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = map[*Client]struct{}{}
		h.rooms[roomID] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) Unsubscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}
}

// DropRoom forgets every subscriber of a removed room.
func (h *Hub) DropRoom(roomID string) {
	h.mu.Lock()
	delete(h.rooms, roomID)
	h.mu.Unlock()
}

func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) Publish(roomID string, ev game.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	subs := h.rooms[roomID]
	if len(subs) == 0 {
		return
	}
	msg, err := EncodeEvent(ev)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("ws_encode_failed")
		return
	}
	for c := range subs {
		c.trySend(msg)
	}
}
