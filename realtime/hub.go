package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Channel is the logical stream name carried in every envelope.
const Channel = "shipments"

// envelope is the wire shape of one push message.
type envelope struct {
	Channel string      `json:"channel"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub fans shipment events out to every connected stream client. A client
// that cannot keep up has messages dropped rather than blocking the rest.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

// Subscribe registers a new client and returns its message channel.
func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast sends one event to every client.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(envelope{Channel: Channel, Event: event, Payload: payload})
	if err != nil {
		log.Println("Failed to marshal stream event:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// slow client, drop the message
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
