// Package realtime pushes notifications to connected WebSocket clients.
//
// The workspace engine publishes every notification after the operation
// that produced it has been saved. Delivery here is best effort: the
// durable copy is the user's feed, so a slow or absent client only misses
// the live push.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/huddle/internal/middleware"
	"github.com/lalith-99/huddle/internal/models"
	"go.uber.org/zap"
)

const (
	sendQueueSize = 64
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxReadSize   = 512
)

// Event is the frame written to clients.
type Event struct {
	Type string              `json:"type"`
	Data models.Notification `json:"data"`
}

type client struct {
	userID int
	conn   *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

type Hub struct {
	mu       sync.Mutex
	clients  map[int]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Publish queues note for every open connection of userID. It never
// blocks; a client whose queue is full is disconnected.
func (h *Hub) Publish(userID int, note models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- Event{Type: "notification", Data: note}:
		default:
			h.logger.Warn("notification queue full, dropping client", zap.Int("u_id", userID))
			h.removeLocked(c)
		}
	}
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// ServeWS handles GET /v1/notifications/stream. It must run behind
// AuthMiddleware.
func (h *Hub) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan Event, sendQueueSize),
		done:   make(chan struct{}),
	}
	h.register(cl)
	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("websocket connected", zap.Int("u_id", c.userID), zap.Int("connections", len(set)))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	c.stop()
}

// readPump discards client frames and keeps the read deadline fresh on
// pongs. It returns once the connection fails or closes.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.Int("u_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				h.logger.Debug("websocket write failed", zap.Int("u_id", c.userID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			c.stop()
		}
	}
	h.clients = make(map[int]map[*client]struct{})
}
