package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartlive/models"
)

const (
	writeWait   = 200 * time.Millisecond
	clientQueue = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans aggregate states out to websocket clients. Slow clients are dropped
// rather than stalling the writer that produced the state.
type Hub struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[*client]bool
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, conns: make(map[*client]bool)}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if h.conns[c] {
		delete(h.conns, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast is a models.Listener; it never blocks.
func (h *Hub) Broadcast(state models.AggregateState) {
	b, err := json.Marshal(state)
	if err != nil {
		h.log.Error("failed to marshal state", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		select {
		case c.send <- b:
		default:
			h.log.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr())
			delete(h.conns, c)
			close(c.send)
		}
	}
}

// ServeWS upgrades the request and streams states until the client goes away.
// The client is registered and seeded with current() under the hub lock, so no
// broadcast can slip in between and leave it showing an older state.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, current func() models.AggregateState) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	if err := h.join(c, current); err != nil {
		h.log.Error("failed to marshal state", "err", err)
		_ = conn.Close()
		return
	}

	go h.writePump(c)

	// read until the peer closes; clients never send anything we use
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) join(c *client, current func() models.AggregateState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, err := json.Marshal(current())
	if err != nil {
		return err
	}
	c.send <- b
	h.conns[c] = true
	return nil
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
