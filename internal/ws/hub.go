package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client is one connected viewer of a run.
type Client struct {
	conn  *websocket.Conn
	runID string
	send  chan []byte
}

// Hub maintains the set of viewers subscribed to each run.
type Hub struct {
	rooms map[string]map[*Client]bool // run ID -> viewers
	mu    sync.RWMutex
}

// RunHub is the process-wide hub for run event streams.
var RunHub = NewHub()

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// ServeRun upgrades the request and streams run events to the viewer until
// the connection drops. Viewers are read-only; inbound frames are discarded.
func (h *Hub) ServeRun(runID string, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:  conn,
		runID: runID,
		send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	if h.rooms[runID] == nil {
		h.rooms[runID] = make(map[*Client]bool)
	}
	h.rooms[runID][client] = true
	viewers := len(h.rooms[runID])
	h.mu.Unlock()

	log.Printf("[WS] viewer joined run %s (viewers=%d)", runID, viewers)

	go client.writePump()
	go client.readPump(h)
	return nil
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, exists := h.rooms[client.runID]; exists {
		if room[client] {
			delete(room, client)
			close(client.send)
		}
		if len(room) == 0 {
			delete(h.rooms, client.runID)
		}
	}
}

// BroadcastToRun sends a message to every viewer of a run.
func (h *Hub) BroadcastToRun(runID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] error marshaling message: %v", err)
		return
	}
	h.BroadcastRawToRun(runID, data)
}

// BroadcastRawToRun fans out pre-marshaled bytes to every viewer of a run.
// Viewers with a full buffer drop the frame rather than stalling the run.
func (h *Hub) BroadcastRawToRun(runID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.rooms[runID]; exists {
		for client := range room {
			select {
			case client.send <- data:
			default:
				log.Printf("[WS] viewer buffer full for run %s, dropping frame", runID)
			}
		}
	}
}

// ViewerCount reports how many viewers are subscribed to a run.
func (h *Hub) ViewerCount(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[runID])
}

// writePump writes queued frames and periodic pings to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed; best-effort close frame.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for run %s viewer: %v", c.runID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed, and cleans
// up when the viewer goes away.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
