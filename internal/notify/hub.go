package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const clientSendBuffer = 16

// Envelope is the wire format for broadcast events.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type client struct {
	send chan []byte
}

// Hub fans broadcast events out to every connected websocket client.
// Slow clients lose events instead of slowing the hub down: a full send
// buffer drops the message for that client only.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish encodes the event and queues it on every client.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("[Hub] failed to encode %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Buffer full; the client will re-fetch on its next event.
		}
	}
}

// Handler upgrades the request and serves the notification socket until
// the client disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{send: make(chan []byte, clientSendBuffer)}
		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()

		done := make(chan struct{})

		// Writer loop. Ends when c.send is closed below.
		go func() {
			defer close(done)
			for msg := range c.send {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		// The channel may only be closed after the client has left the
		// set: Publish sends under h.mu, so removal under the same lock
		// guarantees no send can race the close.
		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			close(c.send)
			<-done
		}()

		hello, _ := json.Marshal(Envelope{Event: "server_msg", Data: map[string]string{"msg": "connected"}})
		select {
		case c.send <- hello:
		default:
		}

		// Reader loop: clients only listen, so this just detects
		// disconnects and control frames.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// ClientCount reports connected clients, for the status endpoint.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
