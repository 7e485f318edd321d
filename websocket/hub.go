// websocket/hub.go
//
// Live update feed: clients subscribe per tenant and receive request
// transitions and stock changes as they happen. Best effort only; a
// slow client is dropped, and the engine's correctness never depends
// on a broadcast being delivered.
package websocket

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type broadcastMessage struct {
	tenant  string
	payload []byte
}

type Hub struct {
	clients    map[string]map[*client]bool
	broadcast  chan broadcastMessage
	register   chan *client
	unregister chan *client
	mutex      sync.Mutex
}

type client struct {
	tenant string
	email  string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*client]bool),
		broadcast:  make(chan broadcastMessage),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case c := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[c.tenant]; !ok {
				h.clients[c.tenant] = make(map[*client]bool)
			}
			h.clients[c.tenant][c] = true
			h.mutex.Unlock()

		case c := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.clients[c.tenant]; ok {
				if _, ok := clients[c]; ok {
					delete(clients, c)
					close(c.send)
					if len(clients) == 0 {
						delete(h.clients, c.tenant)
					}
				}
			}
			h.mutex.Unlock()

		case bm := <-h.broadcast:
			h.mutex.Lock()
			if clients, ok := h.clients[bm.tenant]; ok {
				for c := range clients {
					select {
					case c.send <- bm.payload:
					default:
						close(c.send)
						delete(clients, c)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ServeWS upgrades the connection and subscribes it to its tenant's
// feed. Identity resolution happens in the transport layer before this
// is called.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tenant, email string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{tenant: tenant, email: email, conn: conn, send: make(chan []byte, 16), hub: h}
	h.register <- c
	log.Printf("websocket client connected: %s (%s)", email, tenant)

	go c.writeLoop()
	go c.readLoop()
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
