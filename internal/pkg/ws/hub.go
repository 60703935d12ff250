package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub 维护在线用户的通知连接
type Hub struct {
	// 每个用户可以有多个连接（多标签页、重连等场景）
	sessions map[int64]map[*Client]struct{}
	mu       sync.RWMutex
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	mu     sync.Mutex // 写锁，防止并发写入
}

// Envelope 推送给前端的消息信封
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.UserID] == nil {
		h.sessions[client.UserID] = make(map[*Client]struct{})
	}
	h.sessions[client.UserID][client] = struct{}{}

	log.Printf("User %d online, conns: %d", client.UserID, len(h.sessions[client.UserID]))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.sessions[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.sessions, client.UserID)
		}
	}
	log.Printf("User %d offline", client.UserID)
}

// Notify 向指定用户的所有连接推送一条事件
func (h *Hub) Notify(userID int64, event string, data interface{}) error {
	payload, err := json.Marshal(&Envelope{Event: event, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns, ok := h.sessions[userID]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			log.Printf("Notify write error for user %d: %v", userID, err)
		}
	}
	return nil
}

// IsOnline 检查用户是否在线
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.sessions[userID]
	return ok && len(conns) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.sessions {
		total += len(conns)
	}
	return total
}
