// Package stream broadcasts live simulation progress over WebSockets so a
// browser or dashboard can watch a run without touching its state.
package stream

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/grasslab/mowsim/internal/sim"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound buffer per client; slow consumers get dropped, the
	// simulation never blocks on them.
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The stream is read-only telemetry on a local research tool.
		return true
	},
}

// Message is the wire envelope for stream events.
type Message struct {
	Event string           `json:"event"` // "tick" or "cycle"
	Frame *sim.Frame       `json:"frame,omitempty"`
	Cycle *sim.CycleRecord `json:"cycle,omitempty"`
}

// Client is one connected WebSocket peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and fans simulation events out to
// them. It implements sim.Observer; the simulator hands it frames from its
// own goroutine and the hub serializes everything through one event loop.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	log        *zap.Logger
}

// NewHub creates a hub. Call Run in its own goroutine before serving.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run is the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("stream client connected", zap.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Back-pressure: drop the laggard, not the run.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// OnTick implements sim.Observer.
func (h *Hub) OnTick(f sim.Frame) {
	h.publish(Message{Event: "tick", Frame: &f})
}

// OnCycle implements sim.Observer.
func (h *Hub) OnCycle(rec sim.CycleRecord) {
	h.publish(Message{Event: "cycle", Cycle: &rec})
}

func (h *Hub) publish(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.log.Warn("stream marshal failed", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// Nobody is draining; skip rather than stall the tick loop.
	}
}

// ServeWS upgrades an HTTP request to a stream subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains (and ignores) inbound messages so pings/pongs flow.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pushes hub messages and periodic pings to the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
