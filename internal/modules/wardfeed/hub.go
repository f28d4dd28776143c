// Package wardfeed pushes ward events to connected displays over websocket.
package wardfeed

import (
	"sync"

	"github.com/rs/zerolog"

	"vetward/internal/domain"
)

const sendBuffer = 64

type client struct {
	id   string
	send chan domain.WardEvent
}

// Hub fans events out to every connected client. Publish never blocks: a
// client whose buffer is full is dropped and has to reconnect.
type Hub struct {
	clients map[*client]struct{}
	mutex   sync.RWMutex
	closed  bool
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log.With().Str("module", "wardfeed").Logger(),
	}
}

func (h *Hub) register(id string) *client {
	c := &client{id: id, send: make(chan domain.WardEvent, sendBuffer)}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.closed {
		close(c.send)
		return c
	}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Publish(evt domain.WardEvent) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c := range h.clients {
		select {
		case c.send <- evt:
		default:
			h.log.Warn().Str("client", c.id).Msg("ward feed client too slow, disconnecting")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// sendTo queues evt for one client if it is still connected.
func (h *Hub) sendTo(c *client, evt domain.WardEvent) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- evt:
	default:
	}
}

func (h *Hub) GetOnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
