package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"guildhall/internal/expedition"
)

// EventHub fans scheduler events out to websocket subscribers. Wire its
// Broadcast method into the engine's Notify hook.
type EventHub struct {
	Logger *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan expedition.Event
}

func NewEventHub(logger *log.Logger) *EventHub {
	return &EventHub{
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Broadcast queues the event for every connected client. Slow clients drop
// events rather than stall the simulation loop.
func (h *EventHub) Broadcast(ev expedition.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
		}
	}
}

// ClientCount reports the number of connected subscribers.
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventHub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *EventHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Printf("websocket upgrade: %v", err)
		}
		return
	}

	c := &wsClient{conn: conn, send: make(chan expedition.Event, 64)}
	h.add(c)

	go func() {
		defer conn.Close()
		for ev := range c.send {
			if err := conn.WriteJSON(ev); err != nil {
				break
			}
		}
	}()

	// Reads are discarded; the feed is one-way. The read loop exists to
	// notice disconnects and process control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}
