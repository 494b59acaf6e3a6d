// Package realtime routes message notifications to per-user rooms of live
// WebSocket connections.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event names exchanged with clients.
const (
	EventJoinUserRoom = "join_user_room"
	EventRoomJoined   = "room_joined"
	EventNewMessage   = "new_message"
	EventError        = "error"
)

// DefaultSendBuffer is the per-connection outbound queue length.
const DefaultSendBuffer = 32

// Publisher delivers an event to every connection in a room.
// Delivery is best-effort; implementations must never block on slow readers.
type Publisher interface {
	Publish(ctx context.Context, room, event string, data any) error
}

// RoomName returns the room a user's connections join.
func RoomName(userID uint) string {
	return fmt.Sprintf("user_%d", userID)
}

// Frame is the wire shape of every WebSocket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals an event and its payload into a wire frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// Subscriber is one live connection. It is a member of at most one room.
type Subscriber struct {
	ID     string
	UserID uint

	send chan []byte
	room string
}

// NewSubscriber creates a subscriber for an authenticated user.
func NewSubscriber(userID uint, buffer int) *Subscriber {
	if buffer < 1 {
		buffer = DefaultSendBuffer
	}
	return &Subscriber{
		ID:     uuid.New().String(),
		UserID: userID,
		send:   make(chan []byte, buffer),
	}
}

// Outbound is the queue drained by the connection writer.
func (s *Subscriber) Outbound() <-chan []byte {
	return s.send
}

// enqueue hands a frame to the writer without blocking.
func (s *Subscriber) enqueue(frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// Hub keeps room membership for the connections of this process.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

var _ Publisher = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

// Join moves s into room, leaving any room it was in.
func (h *Hub) Join(s *Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(s)
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Subscriber]struct{})
		h.rooms[room] = members
	}
	members[s] = struct{}{}
	s.room = room
}

// Leave removes s from its room, if any.
func (h *Hub) Leave(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *Subscriber) {
	if s.room == "" {
		return
	}
	if members, ok := h.rooms[s.room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, s.room)
		}
	}
	s.room = ""
}

// RoomOf returns the room s is currently in.
func (h *Hub) RoomOf(s *Subscriber) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return s.room
}

// Members returns the number of connections in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Deliver fans an encoded frame out to room and returns how many
// connections accepted it. Subscribers with a full queue miss the frame.
func (h *Hub) Deliver(room string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.rooms[room] {
		if s.enqueue(frame) {
			delivered++
			continue
		}
		log.Printf("realtime: dropped frame for connection %s in %s: send buffer full", s.ID, room)
	}
	return delivered
}

// Publish encodes the event and delivers it to local members of room.
func (h *Hub) Publish(_ context.Context, room, event string, data any) error {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}
	h.Deliver(room, frame)
	return nil
}
