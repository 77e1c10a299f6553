package ws

import (
	"sync"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
)

// Hub tracks which sessions subscribe to which destinations and fans out
// MESSAGE frames. Delivery is best-effort: a dead subscriber is dropped on the
// first failed write.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Session]string // destination -> session -> subscription id
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Session]string)}
}

func (h *Hub) Subscribe(destination string, s *Session, subscriptionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[destination] == nil {
		h.subs[destination] = make(map[*Session]string)
	}
	h.subs[destination][s] = subscriptionID
}

func (h *Hub) Unsubscribe(destination string, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[destination], s)
	if len(h.subs[destination]) == 0 {
		delete(h.subs, destination)
	}
}

// Remove drops a session from every destination; called on disconnect.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for destination, sessions := range h.subs {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(h.subs, destination)
		}
	}
}

func (h *Hub) Publish(destination string, contentType string, body []byte) {
	h.mu.RLock()
	targets := make(map[*Session]string, len(h.subs[destination]))
	for s, subID := range h.subs[destination] {
		targets[s] = subID
	}
	h.mu.RUnlock()

	for s, subID := range targets {
		msg := frame.New(frame.MESSAGE,
			frame.Destination, destination,
			frame.Subscription, subID,
			frame.MessageId, uuid.New().String(),
			frame.ContentType, contentType,
		)
		msg.Body = body
		if err := s.send(msg); err != nil {
			h.Remove(s)
		}
	}
}
