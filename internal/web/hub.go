package web

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// Update is the credits state of the playing track as pushed to clients.
type Update struct {
	Track     credits.Track          `json:"track"`
	State     credits.LookupState    `json:"state"`
	Bundle    *credits.CreditsBundle `json:"bundle,omitempty"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Hub keeps the latest Update and fans it out to subscribers.
type Hub struct {
	mu        sync.RWMutex
	current   *Update
	listeners map[string]chan Update
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]chan Update)}
}

// Current returns the latest update, if any.
func (h *Hub) Current() (Update, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.current == nil {
		return Update{}, false
	}
	return *h.current, true
}

// Publish records u as current and sends it to every subscriber. Slow
// subscribers miss updates rather than block the publisher.
func (h *Hub) Publish(u Update) {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = &u
	for _, ch := range h.listeners {
		select {
		case ch <- u:
		default:
		}
	}
}

// Subscribe registers a listener and returns its id.
func (h *Hub) Subscribe() (string, <-chan Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Update, 10)
	h.listeners[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Subscribers returns the number of registered listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
