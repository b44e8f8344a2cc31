package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Hub pushes dashboard snapshots to every connected overlay client. Slow or
// dead clients are dropped rather than allowed to stall the draft loop.
type Hub struct {
	Logger *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		Logger:  logger,
		clients: map[*websocket.Conn]struct{}{},
	}
}

func (h *Hub) Register(r *gin.Engine) {
	r.GET("/ws", h.serve)
}

func (h *Hub) serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		// Overlay runs from file:// or a local static server.
		InsecureSkipVerify: true,
	})
	if err != nil {
		Error(c, http.StatusBadRequest, "websocket upgrade failed", nil)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	if h.Logger != nil {
		h.Logger.Info("dashboard client connected", zap.Int("clients", n))
	}

	// Drain incoming frames until the client goes away; the hub is push-only.
	ctx := c.Request.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}
	h.drop(conn, websocket.StatusNormalClosure)
}

// Broadcast sends one snapshot to all clients. Marshal once, write many.
func (h *Hub) Broadcast(snapshot any) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("snapshot marshal failed", zap.Error(err))
		}
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := conn.Write(ctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			h.drop(conn, websocket.StatusGoingAway)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn, status websocket.StatusCode) {
	h.mu.Lock()
	_, present := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if present {
		_ = conn.Close(status, "")
	}
}

// Close disconnects all clients, for shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = map[*websocket.Conn]struct{}{}
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutdown")
	}
}
