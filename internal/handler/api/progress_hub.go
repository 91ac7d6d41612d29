package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"EdgarPull/internal/domain/models"
	xlogger "EdgarPull/pkg/logger"
)

// ProgressHub fans fetch progress events out to websocket subscribers.
// Slow or dead connections are dropped rather than allowed to stall the
// pipeline; events are advisory, not a durable stream.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *xlogger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewProgressHub creates a new ProgressHub instance.
func NewProgressHub(logger *xlogger.Logger) *ProgressHub {
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades the request and keeps the connection registered until the
// peer goes away.
func (h *ProgressHub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.register(conn)
	go h.readUntilClosed(conn)
	return nil
}

// Broadcast sends one event to every subscriber. Safe to call with no
// subscribers attached.
func (h *ProgressHub) Broadcast(p models.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(p); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Close drops every subscriber.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *ProgressHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	if h.logger != nil {
		h.logger.Debug("progress subscriber attached")
	}
}

// readUntilClosed drains inbound frames so pings are answered and the close
// handshake is observed.
func (h *ProgressHub) readUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}
