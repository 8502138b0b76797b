package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voicekit/core"
	"voicekit/store"
)

// feedConn wraps a subscriber connection with a write lock. Gorilla
// connections allow only one concurrent writer, and Publish can race the
// replay write in ServeHTTP.
type feedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *feedConn) write(status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(status))
}

// StatusHub pushes status register transitions to connected WebSocket
// subscribers. Polling /status remains the canonical interface; the feed
// carries the same labels with the same replace-wholesale semantics.
type StatusHub struct {
	logger   *core.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*feedConn]struct{}
	last  string
}

func NewStatusHub(logger *core.Logger) *StatusHub {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &StatusHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*feedConn]struct{}),
	}
}

// ServeHTTP upgrades the connection and replays the last known status so a
// new subscriber starts from a complete snapshot.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("status feed: upgrade: %v", err)
		return
	}
	fc := &feedConn{conn: conn}

	h.mu.Lock()
	h.conns[fc] = struct{}{}
	last := h.last
	h.mu.Unlock()

	if last != "" {
		if err := fc.write(last); err != nil {
			h.logger.Warnf("status feed: replay: %v", err)
			h.drop(fc)
			return
		}
	}

	// Read loop exists only to notice the peer going away.
	go func() {
		defer h.drop(fc)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *StatusHub) drop(fc *feedConn) {
	h.mu.Lock()
	delete(h.conns, fc)
	h.mu.Unlock()
	fc.conn.Close()
}

// Publish fans the new status out to every subscriber.
func (h *StatusHub) Publish(status string) {
	h.mu.Lock()
	h.last = status
	conns := make([]*feedConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, fc := range conns {
		if err := fc.write(status); err != nil {
			h.logger.Warnf("status feed: write: %v", err)
			h.drop(fc)
		}
	}
}

// BroadcastRegister decorates a StatusRegister so every Set also reaches
// the push feed.
type BroadcastRegister struct {
	inner store.StatusRegister
	hub   *StatusHub
}

func NewBroadcastRegister(inner store.StatusRegister, hub *StatusHub) *BroadcastRegister {
	return &BroadcastRegister{inner: inner, hub: hub}
}

func (b *BroadcastRegister) Set(status string) error {
	if err := b.inner.Set(status); err != nil {
		return err
	}
	b.hub.Publish(status)
	return nil
}

func (b *BroadcastRegister) Get() (string, error) {
	return b.inner.Get()
}
