package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"token-pulse/internal/worker/model"
	"token-pulse/internal/worker/monitor"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	clientBufferSize = 256
	hubWriteWait     = 10 * time.Second
	hubPingPeriod    = 30 * time.Second
	hubPongWait      = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 把实时事件广播给所有 WebSocket 客户端
//
// 发送不阻塞：客户端缓冲满时直接丢弃该条事件。
type Hub struct {
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	tl      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*hubClient]struct{}),
		tl:      logger,
	}
}

func (h *Hub) Name() string { return "ws" }

func (h *Hub) Publish(_ context.Context, ev model.LiveEvent) error {
	b, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			monitor.HubMessagesDropped.Inc()
		}
	}
	return nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	monitor.HubClients.Set(float64(n))
}

// unregister 持写锁关闭 send，避免与 Publish 并发写已关闭的 channel
func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	monitor.HubClients.Set(float64(n))
}

// ServeWS 升级连接后阻塞到客户端断开
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.tl.Warn("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	c := &hubClient{conn: conn, send: make(chan []byte, clientBufferSize)}
	h.register(c)
	h.tl.Info("WebSocket client connected", zap.String("remote_addr", r.RemoteAddr), zap.Int("clients", h.Len()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(c)
	}()

	h.readLoop(c)
	h.unregister(c)
	wg.Wait()
	_ = conn.Close()
	h.tl.Info("WebSocket client disconnected", zap.String("remote_addr", r.RemoteAddr), zap.Int("clients", h.Len()))
}

// readLoop 客户端不发业务消息，只用于感知断开和处理 pong
func (h *Hub) readLoop(c *hubClient) {
	_ = c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(hubPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(hubPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// 关闭连接让 readLoop 退出
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(hubWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

// Close 断开所有客户端
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.conn.Close()
	}
}
